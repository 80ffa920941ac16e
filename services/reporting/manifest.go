package reporting

import (
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/ingest"
	"io"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/google/uuid"
)

// Manifest records what a run read, how it was configured and what it
// found, next to the summary artifact.
type Manifest struct {
	RunId            uuid.UUID
	StartedAt        time.Time
	FinishedAt       time.Time
	Location         string
	Requested        []int
	Inclusion        models.InclusionConfig
	SampleSize       int
	Seed             uint64
	Files            []*ingest.FileIngestRequest
	Warnings         []string
	RecordCount      int
	SampledCount     int
	ZeroQualityCount int
	Summary          *models.SummaryTable
}

func BuildManifest(m *Manifest) (*gabs.Container, error) {
	jsonObj := gabs.New()

	fields := []struct {
		value interface{}
		path  []string
	}{
		{m.RunId.String(), []string{"runId"}},
		{m.StartedAt.Format(time.RFC3339), []string{"startedAt"}},
		{m.FinishedAt.Format(time.RFC3339), []string{"finishedAt"}},
		{m.Location, []string{"input", "location"}},
		{m.Requested, []string{"input", "requestedChromosomes"}},
		{m.Inclusion, []string{"inclusion"}},
		{m.SampleSize, []string{"sampling", "size"}},
		{m.Seed, []string{"sampling", "seed"}},
		{m.SampledCount, []string{"sampling", "sampledCount"}},
		{m.RecordCount, []string{"results", "recordCount"}},
		{m.ZeroQualityCount, []string{"results", "zeroQualityCount"}},
	}
	for _, f := range fields {
		if _, err := jsonObj.Set(f.value, f.path...); err != nil {
			return nil, err
		}
	}

	if _, err := jsonObj.Array("input", "files"); err != nil {
		return nil, err
	}
	for _, f := range m.Files {
		if err := jsonObj.ArrayAppend(f, "input", "files"); err != nil {
			return nil, err
		}
	}

	if _, err := jsonObj.Array("warnings"); err != nil {
		return nil, err
	}
	for _, w := range m.Warnings {
		if err := jsonObj.ArrayAppend(w, "warnings"); err != nil {
			return nil, err
		}
	}

	if m.Summary != nil {
		if total, ok := m.Summary.Row(models.TotalRowLabel); ok {
			if _, err := jsonObj.Set(total, "results", "total"); err != nil {
				return nil, err
			}
		}
	}

	return jsonObj, nil
}

func WriteManifest(w io.Writer, m *Manifest) error {
	jsonObj, err := BuildManifest(m)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, jsonObj.StringIndent("", "  ")+"\n")
	return err
}
