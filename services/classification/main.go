package classification

import (
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants/chromosome"
	"imputeqc/pipeline/models/constants/genotype"
	mafBin "imputeqc/pipeline/models/constants/maf-bin"
	qcErrors "imputeqc/pipeline/models/errors"
	"strings"
)

// Classify resolves the genotype label, autosome number and MAF bin of
// every record. The output has the same length and order as records.
func Classify(records []models.VariantRecord) ([]models.ClassifiedVariant, error) {
	classified := make([]models.ClassifiedVariant, len(records))
	for i := range records {
		cv, err := ClassifyRecord(records[i])
		if err != nil {
			return nil, err
		}
		classified[i] = cv
	}
	return classified, nil
}

func ClassifyRecord(r models.VariantRecord) (models.ClassifiedVariant, error) {
	cv := models.ClassifiedVariant{VariantRecord: r}

	g, ok := genotype.FromFlag(r.GenotypedFlag)
	if !ok {
		return cv, &qcErrors.SchemaViolationError{
			Kind:       qcErrors.UnrecognizedGenotypeFlag,
			File:       r.SourceFile,
			Chromosome: r.Chromosome,
			Field:      "genotyped",
			Value:      r.GenotypedFlag,
		}
	}
	cv.Genotype = g

	// an empty label is a missing chromosome, which only keeps the
	// record out of aggregation
	if strings.TrimSpace(r.Chromosome) != "" {
		n, ok := chromosome.Normalize(r.Chromosome)
		if !ok {
			return cv, &qcErrors.SchemaViolationError{
				Kind:       qcErrors.InvalidChromosome,
				File:       r.SourceFile,
				Chromosome: r.Chromosome,
				Field:      "chromosome",
				Value:      r.Id,
			}
		}
		cv.ChromosomeNumber = n
	}

	if r.Maf.Valid {
		cv.MafBin = mafBin.Assign(r.Maf.Float64)
	}

	return cv, nil
}
