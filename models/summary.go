package models

import (
	"gopkg.in/guregu/null.v3"
)

const (
	MeanRowLabel  = "Mean"
	TotalRowLabel = "Total"
)

type (
	// ChromosomeSummary holds counts for one chromosome, or the synthetic
	// Mean/Total rows appended after them. Columns are float64 so the
	// Mean row can carry fractions.
	ChromosomeSummary struct {
		Label      string     `json:"label"`
		NTested    float64    `json:"nTested"`
		PassCommon float64    `json:"passCommon"`
		PassRare   null.Float `json:"passRare"`
		PassTyped  float64    `json:"passTyped"`
		Included   float64    `json:"included"`
	}

	SummaryTable struct {
		Rows    []ChromosomeSummary `json:"rows"`
		HasRare bool                `json:"hasRare"`
	}
)

func (t *SummaryTable) Row(label string) (ChromosomeSummary, bool) {
	for _, r := range t.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return ChromosomeSummary{}, false
}

// ChromosomeRows returns the per-chromosome rows, without Mean and Total.
func (t *SummaryTable) ChromosomeRows() []ChromosomeSummary {
	rows := make([]ChromosomeSummary, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Label == MeanRowLabel || r.Label == TotalRowLabel {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}
