package normalization

import (
	"errors"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	fileFormat "imputeqc/pipeline/models/constants/file-format"
	qcErrors "imputeqc/pipeline/models/errors"
	"imputeqc/pipeline/utils"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// placeholder written by the imputation server for missing numbers
const missingValue = "-"

// accepted header names per logical column, first match wins
var flatColumnAliases = map[string][]string{
	"id":           {"SNP", "ID", "MarkerName"},
	"maf":          {"MAF"},
	"rsq":          {"Rsq", "R2"},
	"empiricalRsq": {"EmpRsq", "ER2", "EmpiricalRsq"},
	"genotyped":    {"Genotyped", "TYPED"},
}

var errOutOfBounds = errors.New("value out of bounds")

var requiredFlatColumns = []string{"id", "maf", "rsq", "genotyped"}

// FlatNormalizer reads files whose columns are already split, e.g.
// SNP REF(0) ALT(1) ALT_Frq MAF AvgCall Rsq Genotyped LooRsq EmpR EmpRsq ...
type FlatNormalizer struct {
	filename  string
	delimiter rune

	discoveredHeaders bool
	columns           map[string]int
	minColumns        int
}

func NewFlatNormalizer(filename string, delimiter rune) *FlatNormalizer {
	return &FlatNormalizer{
		filename:  filename,
		delimiter: delimiter,
		columns:   map[string]int{},
	}
}

func (n *FlatNormalizer) Format() constants.FileFormat {
	return fileFormat.Flat
}

func (n *FlatNormalizer) split(line string) []string {
	if n.delimiter == ' ' {
		return strings.Fields(line)
	}
	return strings.Split(line, string(n.delimiter))
}

// ConsumeHeader treats the first line as the header row.
func (n *FlatNormalizer) ConsumeHeader(line string, lineNumber int) (bool, error) {
	if n.discoveredHeaders {
		return false, nil
	}

	headers := n.split(strings.TrimPrefix(line, "#"))
	for column, aliases := range flatColumnAliases {
		for _, alias := range aliases {
			if i := utils.IndexOfFold(alias, headers); i >= 0 {
				n.columns[column] = i
				break
			}
		}
	}

	for _, column := range requiredFlatColumns {
		if _, ok := n.columns[column]; !ok {
			return false, &qcErrors.SchemaViolationError{
				Kind:  qcErrors.MissingColumn,
				File:  n.filename,
				Line:  lineNumber,
				Field: strings.Join(flatColumnAliases[column], "|"),
				Value: line,
			}
		}
	}
	for _, i := range n.columns {
		if i+1 > n.minColumns {
			n.minColumns = i + 1
		}
	}

	n.discoveredHeaders = true
	return true, nil
}

func (n *FlatNormalizer) ParseLine(line string, lineNumber int) (models.VariantRecord, error) {
	rowComponents := n.split(line)
	if len(rowComponents) < n.minColumns {
		return models.VariantRecord{}, &qcErrors.SchemaViolationError{
			Kind:  qcErrors.MalformedLine,
			File:  n.filename,
			Line:  lineNumber,
			Value: line,
		}
	}

	// The id column is the only trusted source for chrom/pos/ref/alt;
	// the duplicated REF/ALT columns are ignored.
	rawId := strings.TrimSpace(rowComponents[n.columns["id"]])
	idParts := strings.Split(rawId, ":")
	if len(idParts) != 4 {
		return models.VariantRecord{}, &qcErrors.SchemaViolationError{
			Kind:  qcErrors.MalformedId,
			File:  n.filename,
			Line:  lineNumber,
			Field: "id",
			Value: rawId,
		}
	}
	chrom, ref, alt := idParts[0], idParts[2], idParts[3]

	pos, err := strconv.Atoi(idParts[1])
	if err != nil || pos < 0 {
		return models.VariantRecord{}, &qcErrors.SchemaViolationError{
			Kind:       qcErrors.MalformedId,
			File:       n.filename,
			Line:       lineNumber,
			Chromosome: chrom,
			Field:      "id",
			Value:      rawId,
		}
	}

	record := models.VariantRecord{
		Id:            models.MakeVariantId(chrom, pos, ref, alt),
		Chromosome:    chrom,
		Position:      pos,
		Ref:           ref,
		Alt:           alt,
		GenotypedFlag: strings.TrimSpace(rowComponents[n.columns["genotyped"]]),
		SourceFile:    n.filename,
	}

	targets := []struct {
		column string
		value  *null.Float
	}{
		{"maf", &record.Maf},
		{"rsq", &record.Rsq},
		{"empiricalRsq", &record.EmpiricalRsq},
	}
	for _, target := range targets {
		column := target.column
		i, ok := n.columns[column]
		if !ok {
			continue
		}

		value, err := parseOptionalFloat(rowComponents[i])
		if err == nil && value.Valid && !inBounds(column, value.Float64) {
			err = errOutOfBounds
		}
		if err != nil {
			return models.VariantRecord{}, &qcErrors.SchemaViolationError{
				Kind:       qcErrors.UnparseableNumber,
				File:       n.filename,
				Line:       lineNumber,
				Chromosome: chrom,
				Field:      column,
				Value:      rowComponents[i],
			}
		}
		*target.value = value
	}

	return record, nil
}

func parseOptionalFloat(text string) (null.Float, error) {
	text = strings.TrimSpace(text)
	if text == missingValue || text == "" {
		return null.Float{}, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(f), nil
}
