package normalization

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	fileFormat "imputeqc/pipeline/models/constants/file-format"
	qcErrors "imputeqc/pipeline/models/errors"
	"imputeqc/pipeline/tests/common"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name      string
		content   string
		format    string
		delimiter rune
	}{
		{"vcf meta line", "##fileformat=VCFv4.1\n#CHROM\tPOS\n", string(fileFormat.Annotated), '\t'},
		{"bare #CHROM header", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n", string(fileFormat.Annotated), '\t'},
		{"tab separated table", "SNP\tMAF\tRsq\tGenotyped\n", string(fileFormat.Flat), '\t'},
		{"space separated table", "SNP MAF Rsq Genotyped\n", string(fileFormat.Flat), ' '},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			br := bufio.NewReader(strings.NewReader(c.content))
			det, err := DetectFormat(br)
			assert.Nil(t, err)
			assert.Equal(t, c.format, string(det.Format))
			assert.Equal(t, c.delimiter, det.Delimiter)

			// detection must not consume anything
			first, _ := br.ReadString('\n')
			assert.Equal(t, strings.SplitAfter(c.content, "\n")[0], first)
		})
	}
}

func TestNormalizeAnnotated(t *testing.T) {
	content := common.AnnotatedHeader +
		common.AnnotatedLine("7", 12345, "A", "G", "MAF=0.1;R2=0.85;TYPED") +
		common.AnnotatedLine("chr7", 12400, "C", "T", "AF=0.2;MAF=0.002;R2=0.4;ER2=0.39;IMPUTED") +
		common.AnnotatedLine("7", 12500, "G", "A", "MAF=.;R2=0.1")

	records, format, err := Normalize(context.Background(), strings.NewReader(content), "chr7.info.gz", Options{ChunkSize: 2, ConcurrencyLevel: 2})
	assert.Nil(t, err)
	assert.Equal(t, fileFormat.Annotated, format)
	assert.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "7:12345:A:G", first.Id)
	assert.Equal(t, "7", first.Chromosome)
	assert.Equal(t, 12345, first.Position)
	assert.Equal(t, "A", first.Ref)
	assert.Equal(t, "G", first.Alt)
	assert.True(t, first.Maf.Valid)
	assert.Equal(t, 0.1, first.Maf.Float64)
	assert.Equal(t, 0.85, first.Rsq.Float64)
	assert.False(t, first.EmpiricalRsq.Valid)
	assert.Equal(t, "true", first.GenotypedFlag)
	assert.Equal(t, "chr7.info.gz", first.SourceFile)

	second := records[1]
	assert.Equal(t, "chr7:12400:C:T", second.Id)
	assert.Equal(t, 0.002, second.Maf.Float64)
	assert.Equal(t, 0.39, second.EmpiricalRsq.Float64)
	assert.Equal(t, "false", second.GenotypedFlag)

	third := records[2]
	assert.False(t, third.Maf.Valid)
	assert.Equal(t, 0.1, third.Rsq.Float64)
}

func TestNormalizeAnnotatedWithoutHeader(t *testing.T) {
	content := "3\t100\tA\tC\tMAF=0.3;R2=0.9;TYPED_ONLY\n"

	// no marker line: the file is detected as flat, so drive the
	// annotated normalizer directly
	records, err := NormalizeLines(context.Background(), strings.NewReader(content), NewAnnotatedNormalizer("chr3.info"), Options{ChunkSize: 10, ConcurrencyLevel: 1})
	assert.Nil(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "3:100:A:C", records[0].Id)
	assert.Equal(t, "true", records[0].GenotypedFlag)
}

func TestNormalizeAnnotatedFirstOccurrenceWins(t *testing.T) {
	content := common.AnnotatedHeader +
		common.AnnotatedLine("1", 5, "A", "T", "MAF=0.2;MAF=0.4;R2=0.5;R2=x")

	records, _, err := Normalize(context.Background(), strings.NewReader(content), "chr1.info", Options{ChunkSize: 1})
	assert.Nil(t, err)
	assert.Equal(t, 0.2, records[0].Maf.Float64)
	assert.Equal(t, 0.5, records[0].Rsq.Float64)
}

func TestNormalizeAnnotatedErrors(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		kind  qcErrors.SchemaViolationKind
		field string
	}{
		{"unparseable MAF", common.AnnotatedLine("2", 10, "A", "G", "MAF=abc;R2=0.5"), qcErrors.UnparseableNumber, "MAF"},
		{"unparseable R2", common.AnnotatedLine("2", 10, "A", "G", "MAF=0.1;R2=high"), qcErrors.UnparseableNumber, "R2"},
		{"unparseable position", "2\tten\t.\tA\tG\t.\tPASS\tMAF=0.1\n", qcErrors.UnparseableNumber, "POS"},
		{"truncated line", "2\t10\t.\tA\n", qcErrors.MalformedLine, ""},
		{"negative MAF", common.AnnotatedLine("2", 10, "A", "G", "MAF=-0.02;R2=0.5"), qcErrors.UnparseableNumber, "MAF"},
		{"MAF above 0.5", common.AnnotatedLine("2", 10, "A", "G", "MAF=0.7;R2=0.5"), qcErrors.UnparseableNumber, "MAF"},
		{"NaN MAF", common.AnnotatedLine("2", 10, "A", "G", "MAF=NaN;R2=0.5"), qcErrors.UnparseableNumber, "MAF"},
		{"R2 above one", common.AnnotatedLine("2", 10, "A", "G", "MAF=0.1;R2=1.7"), qcErrors.UnparseableNumber, "R2"},
		{"infinite ER2", common.AnnotatedLine("2", 10, "A", "G", "MAF=0.1;R2=0.5;ER2=Inf"), qcErrors.UnparseableNumber, "ER2"},
		{"MAF given as a bare flag", common.AnnotatedLine("2", 10, "A", "G", "MAF;R2=0.9"), qcErrors.UnparseableNumber, "MAF"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			content := common.AnnotatedHeader + common.AnnotatedLine("2", 1, "A", "G", "MAF=0.1;R2=0.5") + c.line

			records, _, err := Normalize(context.Background(), strings.NewReader(content), "chr2.info.gz", Options{ChunkSize: 1, ConcurrencyLevel: 2})
			assert.Nil(t, records)

			var sv *qcErrors.SchemaViolationError
			assert.ErrorAs(t, err, &sv)
			assert.Equal(t, c.kind, sv.Kind)
			assert.Equal(t, c.field, sv.Field)
			assert.Equal(t, "chr2.info.gz", sv.File)
			// 4 header lines, one good record, then the bad one
			assert.Equal(t, 6, sv.Line)
		})
	}

	t.Run("missing header column", func(t *testing.T) {
		content := "#CHROM\tPOS\tID\tREF\tALT\n" + "2\t10\t.\tA\tG\n"
		_, _, err := Normalize(context.Background(), strings.NewReader(content), "chr2.info.gz", Options{})

		var sv *qcErrors.SchemaViolationError
		assert.ErrorAs(t, err, &sv)
		assert.Equal(t, qcErrors.MissingColumn, sv.Kind)
		assert.Equal(t, "INFO", sv.Field)
	})
}

func TestNormalizeFlat(t *testing.T) {
	content := common.FlatHeader +
		common.FlatLine("3:555:C:T", "0.25", "0.91", "0", "-") +
		common.FlatLine("chr3:600:G:A", "0.004", "1", "1", "0.98") +
		common.FlatLine("3:700:A:AT", "-", "0.5", "Imputed", "-")

	records, format, err := Normalize(context.Background(), strings.NewReader(content), "chr3.info.gz", Options{ChunkSize: 2, ConcurrencyLevel: 3})
	assert.Nil(t, err)
	assert.Equal(t, fileFormat.Flat, format)
	assert.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "3:555:C:T", first.Id)
	assert.Equal(t, "3", first.Chromosome)
	assert.Equal(t, 555, first.Position)
	assert.Equal(t, "C", first.Ref)
	assert.Equal(t, "T", first.Alt)
	assert.Equal(t, 0.25, first.Maf.Float64)
	assert.Equal(t, 0.91, first.Rsq.Float64)
	assert.False(t, first.EmpiricalRsq.Valid)
	assert.Equal(t, "0", first.GenotypedFlag)

	assert.Equal(t, "chr3", records[1].Chromosome)
	assert.Equal(t, 0.98, records[1].EmpiricalRsq.Float64)
	assert.Equal(t, "1", records[1].GenotypedFlag)

	assert.False(t, records[2].Maf.Valid)
	assert.Equal(t, "AT", records[2].Alt)
	assert.Equal(t, "Imputed", records[2].GenotypedFlag)
}

func TestNormalizeFlatSpaceSeparated(t *testing.T) {
	content := "SNP  MAF  Rsq  Genotyped\n" +
		"5:10:A:G  0.3  0.8  1\n" +
		"5:20:T:C  0.01  0.2  0\n"

	records, format, err := Normalize(context.Background(), strings.NewReader(content), "chr5.txt", Options{ChunkSize: 10})
	assert.Nil(t, err)
	assert.Equal(t, fileFormat.Flat, format)
	assert.Len(t, records, 2)
	assert.Equal(t, "5:20:T:C", records[1].Id)
	assert.Equal(t, 0.2, records[1].Rsq.Float64)
}

func TestNormalizeFlatErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind qcErrors.SchemaViolationKind
	}{
		{"id with three parts", common.FlatLine("3:555:C", "0.1", "0.5", "0", "-"), qcErrors.MalformedId},
		{"id with a non-numeric position", common.FlatLine("3:abc:C:T", "0.1", "0.5", "0", "-"), qcErrors.MalformedId},
		{"unparseable rsq", common.FlatLine("3:555:C:T", "0.1", "n/a", "0", "-"), qcErrors.UnparseableNumber},
		{"truncated line", "3:555:C:T\tC\n", qcErrors.MalformedLine},
		{"negative maf", common.FlatLine("3:555:C:T", "-0.02", "0.5", "0", "-"), qcErrors.UnparseableNumber},
		{"rsq above one", common.FlatLine("3:555:C:T", "0.1", "1.7", "0", "-"), qcErrors.UnparseableNumber},
		{"NaN maf", common.FlatLine("3:555:C:T", "NaN", "0.5", "0", "-"), qcErrors.UnparseableNumber},
		{"infinite rsq", common.FlatLine("3:555:C:T", "0.1", "Inf", "0", "-"), qcErrors.UnparseableNumber},
		{"negative empirical rsq", common.FlatLine("3:555:C:T", "0.1", "0.5", "0", "-0.1"), qcErrors.UnparseableNumber},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			content := common.FlatHeader + c.line
			_, _, err := Normalize(context.Background(), strings.NewReader(content), "chr3.info.gz", Options{ChunkSize: 1})

			var sv *qcErrors.SchemaViolationError
			assert.ErrorAs(t, err, &sv)
			assert.Equal(t, c.kind, sv.Kind)
			assert.Equal(t, 2, sv.Line)
		})
	}

	t.Run("missing required column", func(t *testing.T) {
		content := "SNP\tMAF\tGenotyped\n3:1:A:G\t0.1\t0\n"
		_, _, err := Normalize(context.Background(), strings.NewReader(content), "chr3.info.gz", Options{})

		var sv *qcErrors.SchemaViolationError
		assert.ErrorAs(t, err, &sv)
		assert.Equal(t, qcErrors.MissingColumn, sv.Kind)
		assert.Equal(t, "Rsq|R2", sv.Field)
	})
}

func TestNormalizeAcceptsBoundaryValues(t *testing.T) {
	annotated := common.AnnotatedHeader +
		common.AnnotatedLine("1", 5, "A", "T", "MAF=0.5;R2=1;ER2=0") +
		common.AnnotatedLine("1", 6, "A", "T", "MAF=0;R2=0")

	records, _, err := Normalize(context.Background(), strings.NewReader(annotated), "chr1.info", Options{})
	assert.Nil(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 0.5, records[0].Maf.Float64)
	assert.Equal(t, 1.0, records[0].Rsq.Float64)
	assert.True(t, records[0].EmpiricalRsq.Valid)

	flat := common.FlatHeader + common.FlatLine("1:5:A:T", "0.5", "1", "1", "0")
	records, _, err = Normalize(context.Background(), strings.NewReader(flat), "chr1.info", Options{})
	assert.Nil(t, err)
	assert.Equal(t, 0.5, records[0].Maf.Float64)
	assert.Equal(t, 0.0, records[0].EmpiricalRsq.Float64)
}

func TestDetectFormatReadsOnlyTheStartOfTheFile(t *testing.T) {
	broken := errors.New("read past the first line")

	var sb strings.Builder
	sb.WriteString("SNP\tMAF\tRsq\tGenotyped\n")
	for sb.Len() < 4096 {
		sb.WriteString(common.FlatLine("3:555:C:T", "0.25", "0.91", "0", "-"))
	}
	r := io.MultiReader(strings.NewReader(sb.String()), iotest.ErrReader(broken))

	det, err := DetectFormat(bufio.NewReaderSize(r, readerBufferSize))
	assert.Nil(t, err)
	assert.Equal(t, fileFormat.Flat, det.Format)
	assert.Equal(t, '\t', det.Delimiter)
}

func TestDetectFormatWithoutNewline(t *testing.T) {
	long := "##fileformat=VCFv4.1" + strings.Repeat("x", 3000)

	det, err := DetectFormat(bufio.NewReaderSize(strings.NewReader(long), 1024))
	assert.Nil(t, err)
	assert.Equal(t, fileFormat.Annotated, det.Format)
}

func TestNormalizeIsIndependentOfChunking(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(common.FlatHeader)
	for i := 1; i <= 257; i++ {
		sb.WriteString(common.FlatLine(fmt.Sprintf("9:%d:A:G", i*10), fmt.Sprintf("%g", float64(i%50)/100), "0.7", fmt.Sprint(i%2), "-"))
		if i%40 == 0 {
			sb.WriteString("\n")
		}
	}
	content := sb.String()

	baseline, _, err := Normalize(context.Background(), strings.NewReader(content), "chr9.info", Options{ChunkSize: 1 << 20, ConcurrencyLevel: 1})
	assert.Nil(t, err)
	assert.Len(t, baseline, 257)

	for _, opts := range []Options{{ChunkSize: 1, ConcurrencyLevel: 8}, {ChunkSize: 7, ConcurrencyLevel: 3}, {ChunkSize: 100, ConcurrencyLevel: 2}, {}} {
		records, _, err := Normalize(context.Background(), strings.NewReader(content), "chr9.info", opts)
		assert.Nil(t, err)
		assert.Equal(t, baseline, records, "chunk size %d, concurrency %d", opts.ChunkSize, opts.ConcurrencyLevel)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	records, _, err := Normalize(context.Background(), strings.NewReader(""), "chr1.info", Options{})
	assert.Nil(t, err)
	assert.Empty(t, records)
}

func TestNormalizeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := common.FlatHeader + common.FlatLine("3:555:C:T", "0.25", "0.91", "0", "-")
	_, _, err := Normalize(ctx, strings.NewReader(content), "chr3.info", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

