package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the pipeline and it's
	associated services.
*/
type Genotype string
type MafBin string
type FileFormat string
