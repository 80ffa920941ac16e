package aggregation

import (
	"fmt"
	"imputeqc/pipeline/models"
	qcErrors "imputeqc/pipeline/models/errors"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"gopkg.in/guregu/null.v3"
)

// Summarize groups variants by chromosome and counts tested, passing and
// included variants. Rows are ordered by chromosome number and followed
// by a Mean row and a Total row, both computed from the chromosome rows.
func Summarize(variants []models.ClassifiedVariant, flags []models.InclusionFlags, cfg models.InclusionConfig) (*models.SummaryTable, error) {
	if len(variants) != len(flags) {
		return nil, fmt.Errorf("got %d variants but %d inclusion flags", len(variants), len(flags))
	}

	hasRare := cfg.HasRareThreshold()
	rowsByChromosome := make(map[int]*models.ChromosomeSummary)

	totalTested := 0
	for i := range variants {
		c := variants[i].ChromosomeNumber
		if c == 0 {
			continue
		}

		row, ok := rowsByChromosome[c]
		if !ok {
			row = &models.ChromosomeSummary{Label: strconv.Itoa(c)}
			if hasRare {
				row.PassRare = null.FloatFrom(0)
			}
			rowsByChromosome[c] = row
		}

		f := flags[i]
		if !f.Tested {
			continue
		}
		totalTested++

		row.NTested++
		row.PassCommon += boolToFloat(f.PassCommon)
		row.PassTyped += boolToFloat(f.PassTyped)
		row.Included += boolToFloat(f.Included)
		if hasRare {
			row.PassRare.Float64 += boolToFloat(f.PassRare)
		}
	}

	if totalTested == 0 {
		return nil, &qcErrors.EmptyDatasetError{Reason: "no variant carries rsq, maf and chromosome"}
	}

	chromosomes := make([]int, 0, len(rowsByChromosome))
	for c := range rowsByChromosome {
		chromosomes = append(chromosomes, c)
	}
	sort.Ints(chromosomes)

	table := &models.SummaryTable{HasRare: hasRare}
	for _, c := range chromosomes {
		table.Rows = append(table.Rows, *rowsByChromosome[c])
	}

	mean, err := reduceRows(table.Rows, models.MeanRowLabel, hasRare, stats.Mean)
	if err != nil {
		return nil, err
	}
	total, err := reduceRows(table.Rows, models.TotalRowLabel, hasRare, stats.Sum)
	if err != nil {
		return nil, err
	}
	table.Rows = append(table.Rows, mean, total)

	return table, nil
}

// reduceRows applies reduce column by column over rows.
func reduceRows(rows []models.ChromosomeSummary, label string, hasRare bool, reduce func(stats.Float64Data) (float64, error)) (models.ChromosomeSummary, error) {
	out := models.ChromosomeSummary{Label: label}

	columns := []struct {
		get func(models.ChromosomeSummary) float64
		set func(float64)
	}{
		{func(r models.ChromosomeSummary) float64 { return r.NTested }, func(v float64) { out.NTested = v }},
		{func(r models.ChromosomeSummary) float64 { return r.PassCommon }, func(v float64) { out.PassCommon = v }},
		{func(r models.ChromosomeSummary) float64 { return r.PassTyped }, func(v float64) { out.PassTyped = v }},
		{func(r models.ChromosomeSummary) float64 { return r.Included }, func(v float64) { out.Included = v }},
	}
	if hasRare {
		columns = append(columns, struct {
			get func(models.ChromosomeSummary) float64
			set func(float64)
		}{
			func(r models.ChromosomeSummary) float64 { return r.PassRare.Float64 },
			func(v float64) { out.PassRare = null.FloatFrom(v) },
		})
	}

	for _, col := range columns {
		data := make(stats.Float64Data, len(rows))
		for i, r := range rows {
			data[i] = col.get(r)
		}

		v, err := reduce(data)
		if err != nil {
			return out, fmt.Errorf("computing %s row: %w", label, err)
		}
		col.set(v)
	}

	return out, nil
}

// CountZeroQuality counts variants whose rsq is present and exactly 0,
// i.e. with no haplotype information at all.
func CountZeroQuality(variants []models.ClassifiedVariant) int {
	n := 0
	for i := range variants {
		if variants[i].IsZeroQuality() {
			n++
		}
	}
	return n
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
