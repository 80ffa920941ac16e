package storage

import (
	"context"
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/utils"
	"io"
	"strings"
)

const gcsScheme = "gs://"

// Source lists and opens the per-chromosome quality files of a run.
type Source interface {
	// Location names the directory (or bucket prefix) being read
	Location() string
	// List returns the full names of every file matching the configured
	// pattern, sorted ascending
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource picks a Source implementation from the scheme of directory.
func NewSource(ctx context.Context, cfg *models.Config, directory string) (Source, error) {
	if directory == "" {
		return nil, fmt.Errorf("no input directory configured")
	}

	if strings.HasPrefix(directory, gcsScheme) {
		client, err := utils.CreateGcsConnection(ctx)
		if err != nil {
			return nil, err
		}
		return NewGcsSource(client, directory, cfg.Input.FilePattern, cfg.Gcs.MaxRetries)
	}

	return NewLocalSource(directory, cfg.Input.FilePattern), nil
}
