package fileFormat

import (
	"imputeqc/pipeline/models/constants"
)

const (
	// semicolon delimited key=value INFO column (VCF-like)
	Annotated constants.FileFormat = "Annotated"
	// pre-split columns with '-' as the missing value sentinel
	Flat constants.FileFormat = "Flat"
)
