package selection

import (
	"imputeqc/pipeline/models/constants/chromosome"
	qcErrors "imputeqc/pipeline/models/errors"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// chromosome number embedded in a file name, i.e. "chr7.info.gz" or
// "study_chr07.dose.info.gz"
var chromosomeInName = regexp.MustCompile(`(?i)chr(?:om(?:osome)?)?_?0*(\d+)(?:\D|$)`)

type (
	SelectedFile struct {
		Chromosome int
		Filename   string
	}

	Selection struct {
		// in requested order
		Files    []SelectedFile
		Warnings []*qcErrors.MissingChromosomeWarning
	}
)

// ChromosomeFromFilename extracts the chromosome number embedded in the
// base name of filename.
func ChromosomeFromFilename(filename string) (int, bool) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))

	m := chromosomeInName.FindStringSubmatch(base)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || !chromosome.IsValidAutosome(n) {
		return 0, false
	}
	return n, true
}

// SelectFiles resolves each requested chromosome against the files found
// at location. Chromosomes without a file produce a warning and are
// skipped; an empty selection is fatal, as are two files for one
// requested chromosome.
func SelectFiles(requested []int, filenames []string, location string) (*Selection, error) {
	wanted := make(map[int]bool, len(requested))
	for _, c := range requested {
		wanted[c] = true
	}

	// files of chromosomes nobody asked for are never opened, so two of
	// them claiming the same chromosome is not an error
	byChromosome := make(map[int]string)
	for _, f := range filenames {
		c, ok := ChromosomeFromFilename(f)
		if !ok || !wanted[c] {
			continue
		}
		if existing, dup := byChromosome[c]; dup {
			return nil, &qcErrors.SchemaViolationError{
				Kind:       qcErrors.DuplicateChromosome,
				File:       f,
				Chromosome: strconv.Itoa(c),
				Value:      existing,
			}
		}
		byChromosome[c] = f
	}

	sel := &Selection{}
	for _, c := range requested {
		f, ok := byChromosome[c]
		if !ok {
			sel.Warnings = append(sel.Warnings, &qcErrors.MissingChromosomeWarning{
				Chromosome: c,
				Location:   location,
			})
			continue
		}
		sel.Files = append(sel.Files, SelectedFile{Chromosome: c, Filename: f})
	}

	if len(sel.Files) == 0 {
		return nil, &qcErrors.EmptyDatasetError{
			Reason: "none of the requested chromosomes have a file under " + location,
		}
	}

	return sel, nil
}
