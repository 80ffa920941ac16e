package models

import (
	"gopkg.in/guregu/null.v3"
)

type Config struct {
	Debug bool `envconfig:"IMPUTEQC_DEBUG" yaml:"debug"`

	Input struct {
		Directory                      string `envconfig:"IMPUTEQC_INPUT_DIR" yaml:"directory"`
		FilePattern                    string `envconfig:"IMPUTEQC_FILE_PATTERN" default:"*chr*.info.gz" yaml:"filePattern"`
		ChunkSize                      int    `envconfig:"IMPUTEQC_CHUNK_SIZE" default:"100000" yaml:"chunkSize"`
		FileProcessingConcurrencyLevel int    `envconfig:"IMPUTEQC_FILE_PROCESSING_CONCURRENCY_LEVEL" default:"0" yaml:"fileProcessingConcurrencyLevel"`
		LineProcessingConcurrencyLevel int    `envconfig:"IMPUTEQC_LINE_PROCESSING_CONCURRENCY_LEVEL" default:"1" yaml:"lineProcessingConcurrencyLevel"`
	} `yaml:"input"`

	Inclusion struct {
		MafCutoff float64 `envconfig:"IMPUTEQC_MAF_CUTOFF" default:"0.01" yaml:"mafCutoff"`
		RsqCommon float64 `envconfig:"IMPUTEQC_RSQ_COMMON" default:"0.3" yaml:"rsqCommon"`
		// unset (nil) excludes rare imputed variants unless genotyped
		RsqRare *float64 `envconfig:"IMPUTEQC_RSQ_RARE" yaml:"rsqRare"`
	} `yaml:"inclusion"`

	Sampling struct {
		Size int    `envconfig:"IMPUTEQC_SAMPLE_SIZE" default:"100000" yaml:"size"`
		Seed uint64 `envconfig:"IMPUTEQC_SEED" default:"1" yaml:"seed"`
	} `yaml:"sampling"`

	Output struct {
		Directory          string `envconfig:"IMPUTEQC_OUTPUT_DIR" default:"." yaml:"directory"`
		ThousandsSeparator bool   `envconfig:"IMPUTEQC_THOUSANDS_SEPARATOR" yaml:"thousandsSeparator"`
		WriteAllVariants   bool   `envconfig:"IMPUTEQC_WRITE_ALL_VARIANTS" yaml:"writeAllVariants"`
	} `yaml:"output"`

	Gcs struct {
		MaxRetries uint64 `envconfig:"IMPUTEQC_GCS_MAX_RETRIES" default:"5" yaml:"maxRetries"`
	} `yaml:"gcs"`
}

// InclusionConfig derives the immutable threshold set handed to the
// inclusion engine and aggregator.
func (c *Config) InclusionConfig() InclusionConfig {
	return InclusionConfig{
		MafCutoff: c.Inclusion.MafCutoff,
		RsqCommon: c.Inclusion.RsqCommon,
		RsqRare:   null.FloatFromPtr(c.Inclusion.RsqRare),
	}
}

// Sequential reports whether files should be normalized one after the
// other rather than on a worker pool.
func (c *Config) Sequential() bool {
	return c.Input.FileProcessingConcurrencyLevel <= 0
}
