package main

import (
	"context"
	"errors"
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants/chromosome"
	qcErrors "imputeqc/pipeline/models/errors"
	"imputeqc/pipeline/repositories/storage"
	"imputeqc/pipeline/services"
	"imputeqc/pipeline/services/reporting"
	"io"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	summaryFilename  = "summary.csv"
	sampleFilename   = "sample.csv"
	variantsFilename = "variants.csv"
	manifestFilename = "manifest.json"
)

// command line flags take precedence over the environment
type args struct {
	Chromosomes string   `arg:"-c,--chromosomes" default:"1:22" help:"chromosomes to process, i.e. 1:22 or 3:5,7"`
	InputDir    string   `arg:"-i,--input-dir" help:"directory (or gs://bucket/prefix) holding the per-chromosome quality files"`
	OutputDir   string   `arg:"-o,--output-dir" help:"directory the summary, sample and manifest are written to"`
	MafCutoff   *float64 `arg:"--maf-cutoff" help:"MAF separating common from rare variants"`
	RsqCommon   *float64 `arg:"--rsq-common" help:"minimum imputation quality of common variants"`
	RsqRare     *float64 `arg:"--rsq-rare" help:"minimum imputation quality of rare variants (unset: rare imputed variants are excluded unless genotyped)"`
	SampleSize  *int     `arg:"-k,--sample-size" help:"number of variants in the stratified sample"`
	Seed        *uint64  `arg:"--seed" help:"seed of the sampling random source"`
	Workers     *int     `arg:"-j,--workers" help:"files normalized in parallel (0 runs sequentially)"`
	AllVariants bool     `arg:"--all-variants" help:"also write every classified variant"`
	Debug       bool     `arg:"-d,--debug" help:"verbose logging"`
}

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	var cli args
	arg.MustParse(&cli)
	applyArgs(&cfg, &cli)

	configureLogging(&cfg)

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tInput Directory : %s \n"+
		"\tFile Pattern : %s \n"+
		"\tChunk Size : %d\n"+
		"\tFile Processing Concurrency Level : %d\n"+
		"\tLine Processing Concurrency Level : %d\n\n"+

		"\tMAF Cutoff : %g\n"+
		"\tRsq Common : %g\n"+
		"\tRsq Rare : %s\n\n"+

		"\tSample Size : %d\n"+
		"\tSeed : %d\n\n"+

		"Writing to : %s\n",

		cfg.Debug,
		cfg.Input.Directory, cfg.Input.FilePattern,
		cfg.Input.ChunkSize,
		cfg.Input.FileProcessingConcurrencyLevel,
		cfg.Input.LineProcessingConcurrencyLevel,
		cfg.Inclusion.MafCutoff, cfg.Inclusion.RsqCommon, describeRsqRare(&cfg),
		cfg.Sampling.Size, cfg.Sampling.Seed,
		cfg.Output.Directory)
	// --

	// range errors are reported before any file is touched
	requested, err := chromosome.ParseRange(cli.Chromosomes)
	if err != nil {
		log.WithError(err).Error("Invalid chromosome range")
		os.Exit(2)
	}

	ctx := context.Background()

	// Service Connections:
	// -- Storage
	source, err := storage.NewSource(ctx, &cfg, cfg.Input.Directory)
	if err != nil {
		log.WithError(err).Error("Unable to open input location")
		os.Exit(2)
	}

	// Service Singletons
	qz := services.NewQcService(&cfg, source, services.NewExecutor(&cfg))

	res, err := qz.Run(ctx, requested)
	if err != nil {
		logRunError(err)
		os.Exit(1)
	}

	if err := writeArtifacts(&cfg, source.Location(), res); err != nil {
		log.WithError(err).Error("Unable to write results")
		os.Exit(1)
	}
}

func applyArgs(cfg *models.Config, cli *args) {
	if cli.InputDir != "" {
		cfg.Input.Directory = cli.InputDir
	}
	if cli.OutputDir != "" {
		cfg.Output.Directory = cli.OutputDir
	}
	if cli.MafCutoff != nil {
		cfg.Inclusion.MafCutoff = *cli.MafCutoff
	}
	if cli.RsqCommon != nil {
		cfg.Inclusion.RsqCommon = *cli.RsqCommon
	}
	if cli.RsqRare != nil {
		cfg.Inclusion.RsqRare = cli.RsqRare
	}
	if cli.SampleSize != nil {
		cfg.Sampling.Size = *cli.SampleSize
	}
	if cli.Seed != nil {
		cfg.Sampling.Seed = *cli.Seed
	}
	if cli.Workers != nil {
		cfg.Input.FileProcessingConcurrencyLevel = *cli.Workers
	}
	if cli.AllVariants {
		cfg.Output.WriteAllVariants = true
	}
	if cli.Debug {
		cfg.Debug = true
	}
}

func configureLogging(cfg *models.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func describeRsqRare(cfg *models.Config) string {
	if cfg.Inclusion.RsqRare == nil {
		return "unset (rare imputed variants excluded unless genotyped)"
	}
	return fmt.Sprintf("%g", *cfg.Inclusion.RsqRare)
}

func logRunError(err error) {
	var (
		schemaErr *qcErrors.SchemaViolationError
		emptyErr  *qcErrors.EmptyDatasetError
	)
	switch {
	case errors.As(err, &schemaErr):
		log.WithFields(log.Fields{
			"kind":  schemaErr.Kind,
			"file":  schemaErr.File,
			"line":  schemaErr.Line,
			"field": schemaErr.Field,
		}).Error(schemaErr.Error())
	case errors.As(err, &emptyErr):
		log.Error(emptyErr.Error())
	default:
		log.WithError(err).Error("Run failed")
	}
}

func writeArtifacts(cfg *models.Config, location string, res *services.Result) error {
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		return err
	}

	err := writeFile(cfg.Output.Directory, summaryFilename, func(w io.Writer) error {
		return reporting.WriteSummary(w, res.Summary, cfg.Output.ThousandsSeparator)
	})
	if err != nil {
		return err
	}

	err = writeFile(cfg.Output.Directory, sampleFilename, func(w io.Writer) error {
		return reporting.WriteVariants(w, res.Sample)
	})
	if err != nil {
		return err
	}

	if cfg.Output.WriteAllVariants {
		err = writeFile(cfg.Output.Directory, variantsFilename, func(w io.Writer) error {
			return reporting.WriteVariants(w, res.Variants)
		})
		if err != nil {
			return err
		}
	}

	return writeFile(cfg.Output.Directory, manifestFilename, func(w io.Writer) error {
		return reporting.WriteManifest(w, res.Manifest(cfg, location))
	})
}

func writeFile(dir string, name string, write func(w io.Writer) error) error {
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	log.WithField("path", p).Info("Written")
	return f.Close()
}
