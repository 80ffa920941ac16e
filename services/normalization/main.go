package normalization

import (
	"bufio"
	"bytes"
	"context"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	fileFormat "imputeqc/pipeline/models/constants/file-format"
	"io"
	"math"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
	"golang.org/x/sync/errgroup"
)

const (
	readerBufferSize = 1 << 20
	maxLineLength    = 64 << 20
	// first peek when looking for the end of the first line
	firstLinePeek = 512
)

// accepted [min, max] per numeric column
var numericBounds = map[string][2]float64{
	"maf":          {0, 0.5},
	"rsq":          {0, 1},
	"empiricalRsq": {0, 1},
}

// Normalizer turns the lines of one input file into VariantRecords. The
// set of implementations is closed: AnnotatedNormalizer and FlatNormalizer.
//
// ConsumeHeader is called on leading lines, in order, until it returns
// false; ParseLine is then called for every data line, possibly from
// several goroutines at once.
type Normalizer interface {
	Format() constants.FileFormat
	ConsumeHeader(line string, lineNumber int) (bool, error)
	ParseLine(line string, lineNumber int) (models.VariantRecord, error)
}

type (
	Detection struct {
		Format    constants.FileFormat
		Delimiter rune
	}

	Options struct {
		// number of lines handed to one parsing task
		ChunkSize int
		// number of chunks parsed at the same time
		ConcurrencyLevel int
	}

	numberedLine struct {
		number int
		text   string
	}

	chunkResult struct {
		records []models.VariantRecord
	}
)

// DetectFormat classifies a file from its first line. Nothing is consumed
// from br, so the caller can hand the same reader to the normalizer.
func DetectFormat(br *bufio.Reader) (Detection, error) {
	for size := firstLinePeek; ; size *= 2 {
		if size > br.Size() {
			size = br.Size()
		}

		peeked, err := br.Peek(size)
		if i := bytes.IndexByte(peeked, '\n'); i >= 0 {
			return classifyFirstLine(peeked[:i]), nil
		}
		// a first line longer than the buffer is classified on its prefix
		if err == io.EOF || err == bufio.ErrBufferFull || len(peeked) == br.Size() {
			return classifyFirstLine(peeked), nil
		}
		if err != nil {
			return Detection{}, pfx.Err(err)
		}
	}
}

func classifyFirstLine(line []byte) Detection {
	line = bytes.TrimRight(line, "\r")

	if isAnnotatedMarker(string(line)) {
		return Detection{Format: fileFormat.Annotated, Delimiter: '\t'}
	}
	return Detection{Format: fileFormat.Flat, Delimiter: detectDelimiter(line)}
}

func isAnnotatedMarker(line string) bool {
	return strings.HasPrefix(line, "##fileformat=VCF") || strings.HasPrefix(line, "#CHROM")
}

// delimiters a flat table may use, most likely first
var delimiterPreference = []rune{'\t', ',', ';', '|', ' '}

func detectDelimiter(line []byte) rune {
	if len(line) == 0 {
		return '\t'
	}

	// line aliases the reader's buffer
	sample := make([]byte, 0, len(line)+1)
	sample = append(append(sample, line...), '\n')

	d := detector.New()
	candidates := d.DetectDelimiter(bytes.NewReader(sample), '"')
	for _, preferred := range delimiterPreference {
		for _, c := range candidates {
			if c == string(preferred) {
				return preferred
			}
		}
	}

	if !bytes.ContainsRune(line, '\t') && bytes.ContainsRune(line, ' ') {
		return ' '
	}
	return '\t'
}

// inBounds reports whether v is finite and inside the accepted range of
// column.
func inBounds(column string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	b, ok := numericBounds[column]
	return !ok || (v >= b[0] && v <= b[1])
}

// ForDetection returns the normalizer matching det.
func ForDetection(det Detection, filename string) Normalizer {
	if det.Format == fileFormat.Annotated {
		return NewAnnotatedNormalizer(filename)
	}
	return NewFlatNormalizer(filename, det.Delimiter)
}

// Normalize detects the format of r and streams it through the matching
// normalizer, chunk by chunk. Records come back in file order whatever the
// concurrency level.
func Normalize(ctx context.Context, r io.Reader, filename string, opts Options) ([]models.VariantRecord, constants.FileFormat, error) {
	br := bufio.NewReaderSize(r, readerBufferSize)

	det, err := DetectFormat(br)
	if err != nil {
		return nil, "", err
	}

	n := ForDetection(det, filename)
	records, err := NormalizeLines(ctx, br, n, opts)
	if err != nil {
		return nil, n.Format(), err
	}
	return records, n.Format(), nil
}

func NormalizeLines(ctx context.Context, r io.Reader, n Normalizer, opts Options) ([]models.VariantRecord, error) {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1
	}
	if opts.ConcurrencyLevel < 1 {
		opts.ConcurrencyLevel = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.ConcurrencyLevel)

	var results []*chunkResult
	dispatch := func(lines []numberedLine) {
		res := &chunkResult{}
		results = append(results, res)

		g.Go(func() error {
			records := make([]models.VariantRecord, 0, len(lines))
			for _, l := range lines {
				rec, err := n.ParseLine(l.text, l.number)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}
			res.records = records
			return nil
		})
	}

	var (
		lineNumber int
		inHeader   = true
		chunk      = make([]numberedLine, 0, opts.ChunkSize)
	)
	for scanner.Scan() {
		if gctx.Err() != nil {
			break
		}
		lineNumber++

		line := strings.TrimRight(scanner.Text(), "\r")
		if inHeader {
			isHeader, err := n.ConsumeHeader(line, lineNumber)
			if err != nil {
				g.Wait()
				return nil, err
			}
			if isHeader {
				continue
			}
			inHeader = false
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		chunk = append(chunk, numberedLine{number: lineNumber, text: line})
		if len(chunk) == opts.ChunkSize {
			dispatch(chunk)
			chunk = make([]numberedLine, 0, opts.ChunkSize)
		}
	}
	if len(chunk) > 0 && gctx.Err() == nil {
		dispatch(chunk)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, res := range results {
		total += len(res.records)
	}
	records := make([]models.VariantRecord, 0, total)
	for _, res := range results {
		records = append(records, res.records...)
	}

	return records, nil
}
