package errors

import (
	"fmt"
	"strings"
)

/*
	Error taxonomy shared by every stage of the pipeline.

	Only MissingChromosomeWarning is recoverable; it is handed back
	to callers as a value and logged. Everything else aborts the run.
*/

type SchemaViolationKind string

const (
	UnparseableNumber        SchemaViolationKind = "UnparseableNumber"
	UnrecognizedGenotypeFlag SchemaViolationKind = "UnrecognizedGenotypeFlag"
	InvalidChromosome        SchemaViolationKind = "InvalidChromosome"
	MalformedId              SchemaViolationKind = "MalformedId"
	MalformedLine            SchemaViolationKind = "MalformedLine"
	MissingColumn            SchemaViolationKind = "MissingColumn"
	DuplicateChromosome      SchemaViolationKind = "DuplicateChromosome"
)

// -- Recoverable
type MissingChromosomeWarning struct {
	Chromosome int
	Location   string
}

func (w *MissingChromosomeWarning) Error() string {
	return fmt.Sprintf("no file found for chromosome %d under %s", w.Chromosome, w.Location)
}

// -- Fatal
type InvalidRangeError struct {
	Expression string
	Token      string
	Reason     string
}

func (e *InvalidRangeError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid chromosome range %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("invalid chromosome range %q at %q: %s", e.Expression, e.Token, e.Reason)
}

type SchemaViolationError struct {
	Kind       SchemaViolationKind
	File       string
	Line       int
	Field      string
	Value      string
	Chromosome string
}

func (e *SchemaViolationError) Error() string {
	parts := []string{string(e.Kind)}
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}
	if e.Chromosome != "" {
		parts = append(parts, fmt.Sprintf("chromosome=%s", e.Chromosome))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	parts = append(parts, fmt.Sprintf("value=%q", e.Value))

	return "schema violation: " + strings.Join(parts, " ")
}

type EmptyDatasetError struct {
	Reason string
}

func (e *EmptyDatasetError) Error() string {
	return "empty dataset: " + e.Reason
}
