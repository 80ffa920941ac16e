package reporting

import (
	"fmt"
	"imputeqc/pipeline/models"
	mafBin "imputeqc/pipeline/models/constants/maf-bin"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// summary column names, in output order
const (
	ColumnChromosome = "chromosome"
	ColumnNTested    = "n_tested"
	ColumnPassCommon = "pass_common"
	ColumnPassRare   = "pass_rare"
	ColumnPassTyped  = "pass_typed"
	ColumnIncluded   = "included"
)

var thousandsPrinter = message.NewPrinter(language.English)

// FormatCount renders v without trailing zeros; integral values print
// as integers. With thousands set, digits are grouped ("1,234,567").
func FormatCount(v float64, thousands bool) string {
	integral := v == math.Trunc(v)

	if thousands {
		if integral {
			return thousandsPrinter.Sprintf("%d", int64(v))
		}
		return thousandsPrinter.Sprintf("%.2f", v)
	}

	if integral {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SummaryDataFrame lays the summary table out as a DataFrame of
// presentation strings. The pass_rare column only exists when a rare
// threshold was configured.
func SummaryDataFrame(table *models.SummaryTable, thousands bool) dataframe.DataFrame {
	n := len(table.Rows)
	var (
		labels     = make([]string, n)
		nTested    = make([]string, n)
		passCommon = make([]string, n)
		passRare   = make([]string, n)
		passTyped  = make([]string, n)
		included   = make([]string, n)
	)

	for i, r := range table.Rows {
		labels[i] = r.Label
		nTested[i] = FormatCount(r.NTested, thousands)
		passCommon[i] = FormatCount(r.PassCommon, thousands)
		passRare[i] = FormatCount(r.PassRare.Float64, thousands)
		passTyped[i] = FormatCount(r.PassTyped, thousands)
		included[i] = FormatCount(r.Included, thousands)
	}

	columns := []series.Series{
		series.New(labels, series.String, ColumnChromosome),
		series.New(nTested, series.String, ColumnNTested),
		series.New(passCommon, series.String, ColumnPassCommon),
	}
	if table.HasRare {
		columns = append(columns, series.New(passRare, series.String, ColumnPassRare))
	}
	columns = append(columns,
		series.New(passTyped, series.String, ColumnPassTyped),
		series.New(included, series.String, ColumnIncluded),
	)

	return dataframe.New(columns...)
}

// WriteSummary writes the summary table as comma separated text.
func WriteSummary(w io.Writer, table *models.SummaryTable, thousands bool) error {
	df := SummaryDataFrame(table, thousands)
	if df.Err != nil {
		return fmt.Errorf("building summary table: %w", df.Err)
	}
	return df.WriteCSV(w)
}

// VariantsDataFrame lays classified variants out one per row; absent
// numbers are left empty. maf_bin_rank orders the bins from rarest to
// most common so plots need not parse the labels.
func VariantsDataFrame(variants []models.ClassifiedVariant) dataframe.DataFrame {
	n := len(variants)
	var (
		ids         = make([]string, n)
		chromosomes = make([]int, n)
		positions   = make([]int, n)
		mafs        = make([]string, n)
		rsqs        = make([]string, n)
		empiricals  = make([]string, n)
		genotypes   = make([]string, n)
		mafBins     = make([]string, n)
		mafBinRanks = make([]string, n)
		sourceFiles = make([]string, n)
	)

	for i, v := range variants {
		ids[i] = v.Id
		chromosomes[i] = v.ChromosomeNumber
		positions[i] = v.Position
		mafs[i] = formatOptional(v.Maf.Valid, v.Maf.Float64)
		rsqs[i] = formatOptional(v.Rsq.Valid, v.Rsq.Float64)
		empiricals[i] = formatOptional(v.EmpiricalRsq.Valid, v.EmpiricalRsq.Float64)
		genotypes[i] = string(v.Genotype)
		mafBins[i] = string(v.MafBin)
		if rank := mafBin.Rank(v.MafBin); rank >= 0 {
			mafBinRanks[i] = strconv.Itoa(rank)
		}
		sourceFiles[i] = v.SourceFile
	}

	return dataframe.New(
		series.New(ids, series.String, "id"),
		series.New(chromosomes, series.Int, "chromosome"),
		series.New(positions, series.Int, "position"),
		series.New(mafs, series.String, "maf"),
		series.New(rsqs, series.String, "rsq"),
		series.New(empiricals, series.String, "empirical_rsq"),
		series.New(genotypes, series.String, "genotyped"),
		series.New(mafBins, series.String, "maf_bin"),
		series.New(mafBinRanks, series.String, "maf_bin_rank"),
		series.New(sourceFiles, series.String, "source_file"),
	)
}

func formatOptional(valid bool, f float64) string {
	if !valid {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func WriteVariants(w io.Writer, variants []models.ClassifiedVariant) error {
	df := VariantsDataFrame(variants)
	if df.Err != nil {
		return fmt.Errorf("building variant table: %w", df.Err)
	}
	return df.WriteCSV(w)
}
