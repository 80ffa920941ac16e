package services

import (
	"context"
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	"imputeqc/pipeline/models/ingest"
	"imputeqc/pipeline/repositories/storage"
	"imputeqc/pipeline/services/normalization"
	"imputeqc/pipeline/services/selection"
	"imputeqc/pipeline/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type (
	IngestionService struct {
		Config   *models.Config
		Source   storage.Source
		Executor Executor
		RunId    uuid.UUID

		IngestRequestMap    map[string]*ingest.FileIngestRequest
		IngestRequestMapMux sync.RWMutex
	}
)

func NewIngestionService(cfg *models.Config, source storage.Source, executor Executor, runId uuid.UUID) *IngestionService {
	iz := &IngestionService{
		Config:              cfg,
		Source:              source,
		Executor:            executor,
		RunId:               runId,
		IngestRequestMap:    map[string]*ingest.FileIngestRequest{},
		IngestRequestMapMux: sync.RWMutex{},
	}

	return iz
}

// NormalizeFiles normalizes every selected file through the executor and
// concatenates the records in selection order. Any failure discards all
// records: a run either covers every selected file or produces nothing.
func (i *IngestionService) NormalizeFiles(ctx context.Context, files []selection.SelectedFile) ([]models.VariantRecord, error) {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Filename] || i.FilenameAlreadyRunning(f.Filename) {
			return nil, fmt.Errorf("%s is already queued for normalization", f.Filename)
		}
		seen[f.Filename] = true
	}
	for _, f := range files {
		i.queue(f)
	}

	batches := make([][]models.VariantRecord, len(files))
	err := i.Executor.Run(ctx, len(files), func(ctx context.Context, idx int) error {
		records, err := i.ProcessInfoFile(ctx, files[idx])
		if err != nil {
			return err
		}
		batches[idx] = records
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	records := make([]models.VariantRecord, 0, total)
	for _, b := range batches {
		records = append(records, b...)
	}

	return records, nil
}

func (i *IngestionService) ProcessInfoFile(ctx context.Context, f selection.SelectedFile) ([]models.VariantRecord, error) {
	fileLog := log.WithFields(log.Fields{
		"runId":      i.RunId,
		"file":       f.Filename,
		"chromosome": f.Chromosome,
	})
	i.update(f.Filename, func(r *ingest.FileIngestRequest) {
		r.State = ingest.Running
	})
	fileLog.Debug("Normalizing file")

	records, format, err := i.normalize(ctx, f.Filename)
	if err != nil {
		i.update(f.Filename, func(r *ingest.FileIngestRequest) {
			r.State = ingest.Error
			r.Format = format
			r.Message = err.Error()
		})
		fileLog.WithError(err).Error("Failed to normalize file")
		return nil, err
	}

	i.update(f.Filename, func(r *ingest.FileIngestRequest) {
		r.State = ingest.Done
		r.Format = format
		r.RecordCount = len(records)
	})
	fileLog.WithFields(log.Fields{
		"format":  format,
		"records": len(records),
	}).Info("File normalized")

	return records, nil
}

func (i *IngestionService) normalize(ctx context.Context, filename string) ([]models.VariantRecord, constants.FileFormat, error) {
	rc, err := i.Source.Open(ctx, filename)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	dr, err := utils.MaybeDecompress(rc)
	if err != nil {
		return nil, "", err
	}
	defer dr.Close()

	return normalization.Normalize(ctx, dr, filename, normalization.Options{
		ChunkSize:        i.Config.Input.ChunkSize,
		ConcurrencyLevel: i.Config.Input.LineProcessingConcurrencyLevel,
	})
}

func (i *IngestionService) queue(f selection.SelectedFile) {
	now := time.Now().String()

	i.IngestRequestMapMux.Lock()
	defer i.IngestRequestMapMux.Unlock()

	i.IngestRequestMap[f.Filename] = &ingest.FileIngestRequest{
		Id:         uuid.New(),
		RunId:      i.RunId,
		Filename:   f.Filename,
		Chromosome: f.Chromosome,
		State:      ingest.Queued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (i *IngestionService) update(filename string, apply func(r *ingest.FileIngestRequest)) {
	i.IngestRequestMapMux.Lock()
	defer i.IngestRequestMapMux.Unlock()

	r, ok := i.IngestRequestMap[filename]
	if !ok {
		return
	}
	apply(r)
	r.UpdatedAt = time.Now().String()
}

// Requests returns a snapshot of the ingest requests of files, in order.
func (i *IngestionService) Requests(files []selection.SelectedFile) []*ingest.FileIngestRequest {
	i.IngestRequestMapMux.RLock()
	defer i.IngestRequestMapMux.RUnlock()

	requests := make([]*ingest.FileIngestRequest, 0, len(files))
	for _, f := range files {
		if r, ok := i.IngestRequestMap[f.Filename]; ok {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	return requests
}

// FilenameAlreadyRunning reports whether filename is queued or being
// normalized.
func (i *IngestionService) FilenameAlreadyRunning(filename string) bool {
	i.IngestRequestMapMux.RLock()
	defer i.IngestRequestMapMux.RUnlock()

	r, ok := i.IngestRequestMap[filename]
	return ok && (r.State == ingest.Queued || r.State == ingest.Running)
}
