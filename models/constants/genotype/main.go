package genotype

import (
	"imputeqc/pipeline/models/constants"
	"strings"
)

const (
	Unknown constants.Genotype = ""

	Genotyped constants.Genotype = "Genotyped"
	Imputed   constants.Genotype = "Imputed"
)

// FromFlag resolves a raw typed/genotyped indicator, as found in either
// file format, to a genotype label. The second return value is false
// when the encoding is not recognized.
func FromFlag(flag string) (constants.Genotype, bool) {
	switch strings.TrimSpace(flag) {
	case "1", "t", "T", "TRUE", "true", "True", "Genotyped", "GENOTYPED", "Typed", "TYPED":
		return Genotyped, true
	case "0", "f", "F", "FALSE", "false", "False", "Imputed", "IMPUTED":
		return Imputed, true
	default:
		return Unknown, false
	}
}

func IsGenotyped(g constants.Genotype) bool {
	return g == Genotyped
}
