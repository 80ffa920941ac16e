package ingest

import (
	"imputeqc/pipeline/models/constants"

	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Running State = "Running"
	Done    State = "Done"
	Error   State = "Error"
)

// FileIngestRequest tracks the normalization of a single input file.
type FileIngestRequest struct {
	Id          uuid.UUID            `json:"id"`
	RunId       uuid.UUID            `json:"runId"`
	Filename    string               `json:"filename"`
	Chromosome  int                  `json:"chromosome"`
	Format      constants.FileFormat `json:"format"`
	State       State                `json:"state"`
	Message     string               `json:"message"`
	RecordCount int                  `json:"recordCount"`
	CreatedAt   string               `json:"createdAt"`
	UpdatedAt   string               `json:"updatedAt"`
}
