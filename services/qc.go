package services

import (
	"context"
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/ingest"
	"imputeqc/pipeline/repositories/storage"
	"imputeqc/pipeline/services/aggregation"
	"imputeqc/pipeline/services/classification"
	"imputeqc/pipeline/services/inclusion"
	"imputeqc/pipeline/services/reporting"
	"imputeqc/pipeline/services/sampling"
	"imputeqc/pipeline/services/selection"
	"time"

	"github.com/carbocation/pfx"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type (
	QcService struct {
		Config   *models.Config
		Source   storage.Source
		Executor Executor
	}

	Result struct {
		RunId      uuid.UUID
		StartedAt  time.Time
		FinishedAt time.Time
		Requested  []int

		Selection *selection.Selection
		Requests  []*ingest.FileIngestRequest

		Variants         []models.ClassifiedVariant
		Flags            []models.InclusionFlags
		Summary          *models.SummaryTable
		Sample           []models.ClassifiedVariant
		ZeroQualityCount int
	}
)

func NewQcService(cfg *models.Config, source storage.Source, executor Executor) *QcService {
	if executor == nil {
		executor = NewExecutor(cfg)
	}
	return &QcService{
		Config:   cfg,
		Source:   source,
		Executor: executor,
	}
}

// Run reads the files of the requested chromosomes and derives the
// per-chromosome summary and the stratified sample from the same
// classified collection. Nothing is returned unless every selected file
// was read successfully.
func (q *QcService) Run(ctx context.Context, requested []int) (*Result, error) {
	res := &Result{
		RunId:     uuid.New(),
		StartedAt: time.Now(),
		Requested: requested,
	}
	runLog := log.WithField("runId", res.RunId)

	filenames, err := q.Source.List(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	sel, err := selection.SelectFiles(requested, filenames, q.Source.Location())
	if err != nil {
		return nil, err
	}
	for _, w := range sel.Warnings {
		runLog.WithField("chromosome", w.Chromosome).Warn(w.Error())
	}
	res.Selection = sel
	runLog.Infof("Selected %d of %d requested chromosomes from %s", len(sel.Files), len(requested), q.Source.Location())

	iz := NewIngestionService(q.Config, q.Source, q.Executor, res.RunId)
	records, err := iz.NormalizeFiles(ctx, sel.Files)
	res.Requests = iz.Requests(sel.Files)
	if err != nil {
		return nil, err
	}

	res.Variants, err = classification.Classify(records)
	if err != nil {
		return nil, err
	}
	runLog.Debugf("Classified %d variants", len(res.Variants))

	// both consumers only read the classified collection
	incCfg := q.Config.InclusionConfig()
	var g errgroup.Group
	g.Go(func() error {
		res.Flags = inclusion.EvaluateAll(res.Variants, incCfg)
		summary, err := aggregation.Summarize(res.Variants, res.Flags, incCfg)
		if err != nil {
			return err
		}
		res.Summary = summary
		return nil
	})
	g.Go(func() error {
		res.Sample = sampling.Sample(res.Variants, q.Config.Sampling.Size, q.Config.Sampling.Seed)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.ZeroQualityCount = aggregation.CountZeroQuality(res.Variants)
	if res.ZeroQualityCount > 0 {
		runLog.WithField("count", res.ZeroQualityCount).Warn("Variants with an imputation quality of exactly 0 found")
	}
	if !incCfg.HasRareThreshold() {
		runLog.Warn(RareThresholdWarning(incCfg))
	}

	res.FinishedAt = time.Now()
	runLog.WithField("duration", res.FinishedAt.Sub(res.StartedAt).String()).Info("Run complete")

	return res, nil
}

// RareThresholdWarning tells users what happens to rare variants when no
// rare-variant quality threshold is set.
func RareThresholdWarning(cfg models.InclusionConfig) string {
	return fmt.Sprintf("no rare-variant quality threshold set: imputed variants with MAF below %g are excluded unless genotyped, whatever their quality", cfg.MafCutoff)
}

// Manifest describes the run for the JSON side artifact.
func (r *Result) Manifest(cfg *models.Config, location string) *reporting.Manifest {
	warnings := make([]string, 0)
	if r.Selection != nil {
		for _, w := range r.Selection.Warnings {
			warnings = append(warnings, w.Error())
		}
	}
	if r.ZeroQualityCount > 0 {
		warnings = append(warnings, fmt.Sprintf("%d variants have an imputation quality of exactly 0", r.ZeroQualityCount))
	}
	if inc := cfg.InclusionConfig(); !inc.HasRareThreshold() {
		warnings = append(warnings, RareThresholdWarning(inc))
	}

	return &reporting.Manifest{
		RunId:            r.RunId,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		Location:         location,
		Requested:        r.Requested,
		Inclusion:        cfg.InclusionConfig(),
		SampleSize:       cfg.Sampling.Size,
		Seed:             cfg.Sampling.Seed,
		Files:            r.Requests,
		Warnings:         warnings,
		RecordCount:      len(r.Variants),
		SampledCount:     len(r.Sample),
		ZeroQualityCount: r.ZeroQualityCount,
		Summary:          r.Summary,
	}
}
