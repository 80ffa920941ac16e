package models

import (
	"fmt"
	"imputeqc/pipeline/models/constants"

	"gopkg.in/guregu/null.v3"
)

type (
	// VariantRecord is one normalized row, identical in shape whichever
	// on-disk format it was read from.
	VariantRecord struct {
		Id           string     `json:"id"`
		Chromosome   string     `json:"chromosome"`
		Position     int        `json:"position"`
		Ref          string     `json:"ref"`
		Alt          string     `json:"alt"`
		Maf          null.Float `json:"maf"`
		Rsq          null.Float `json:"rsq"`
		EmpiricalRsq null.Float `json:"empiricalRsq"`

		// raw typed/genotyped indicator; resolved by the classifier
		GenotypedFlag string `json:"genotypedFlag"`

		SourceFile string `json:"sourceFile"`
	}

	ClassifiedVariant struct {
		VariantRecord
		// 0 when the record carried no chromosome
		ChromosomeNumber int                `json:"chromosomeNumber"`
		Genotype         constants.Genotype `json:"genotype"`
		MafBin           constants.MafBin   `json:"mafBin"`
	}

	InclusionFlags struct {
		Tested     bool
		PassCommon bool
		PassRare   bool
		PassMaf    bool
		PassTyped  bool
		Included   bool
	}
)

func MakeVariantId(chromosome string, position int, ref string, alt string) string {
	return fmt.Sprintf("%s:%d:%s:%s", chromosome, position, ref, alt)
}

// IsTested reports whether the variant carries every field the
// inclusion rules need.
func (v *ClassifiedVariant) IsTested() bool {
	return v.Rsq.Valid && v.Maf.Valid && v.ChromosomeNumber != 0
}

// IsZeroQuality flags variants with no usable haplotype information.
func (v *ClassifiedVariant) IsZeroQuality() bool {
	return v.Rsq.Valid && v.Rsq.Float64 == 0
}
