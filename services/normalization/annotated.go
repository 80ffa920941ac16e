package normalization

import (
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	fileFormat "imputeqc/pipeline/models/constants/file-format"
	qcErrors "imputeqc/pipeline/models/errors"
	"imputeqc/pipeline/utils"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/guregu/null.v3"
)

// numeric annotation keys and the record column they fill; everything
// else but the typed flags is dropped
var numericInfoKeys = []struct {
	key    string
	column string
}{
	{"MAF", "maf"},
	{"R2", "rsq"},
	{"ER2", "empiricalRsq"},
}

type (
	// AnnotatedNormalizer reads VCF-like files whose INFO column packs
	// MAF=..;R2=..;ER2=..;TYPED style entries.
	AnnotatedNormalizer struct {
		filename string

		chromIndex int
		posIndex   int
		refIndex   int
		altIndex   int
		infoIndex  int
		minColumns int
	}

	infoPair struct {
		Key   string
		Value interface{}
	}

	infoFields struct {
		Maf          *float64 `mapstructure:"MAF"`
		Rsq          *float64 `mapstructure:"R2"`
		EmpiricalRsq *float64 `mapstructure:"ER2"`
		Typed        bool     `mapstructure:"TYPED"`
		TypedOnly    bool     `mapstructure:"TYPED_ONLY"`
	}
)

func NewAnnotatedNormalizer(filename string) *AnnotatedNormalizer {
	// without a #CHROM header, columns are CHROM POS REF ALT INFO
	n := &AnnotatedNormalizer{filename: filename}
	n.setColumns(0, 1, 2, 3, 4)
	return n
}

func (n *AnnotatedNormalizer) setColumns(chrom, pos, ref, alt, info int) {
	n.chromIndex, n.posIndex, n.refIndex, n.altIndex, n.infoIndex = chrom, pos, ref, alt, info

	n.minColumns = 0
	for _, i := range []int{chrom, pos, ref, alt, info} {
		if i+1 > n.minColumns {
			n.minColumns = i + 1
		}
	}
}

func (n *AnnotatedNormalizer) Format() constants.FileFormat {
	return fileFormat.Annotated
}

func (n *AnnotatedNormalizer) ConsumeHeader(line string, lineNumber int) (bool, error) {
	if strings.HasPrefix(line, "##") {
		return true, nil
	}
	if !strings.HasPrefix(line, "#") {
		return false, nil
	}

	// Gather column positions from the #CHROM header row
	headers := strings.Split(strings.TrimPrefix(line, "#"), "\t")

	var indexes []int
	for _, name := range []string{"CHROM", "POS", "REF", "ALT", "INFO"} {
		i := utils.IndexOfFold(name, headers)
		if i < 0 {
			return false, &qcErrors.SchemaViolationError{
				Kind:  qcErrors.MissingColumn,
				File:  n.filename,
				Line:  lineNumber,
				Field: name,
				Value: line,
			}
		}
		indexes = append(indexes, i)
	}
	n.setColumns(indexes[0], indexes[1], indexes[2], indexes[3], indexes[4])

	return true, nil
}

func (n *AnnotatedNormalizer) ParseLine(line string, lineNumber int) (models.VariantRecord, error) {
	rowComponents := strings.Split(line, "\t")
	if len(rowComponents) < n.minColumns {
		return models.VariantRecord{}, &qcErrors.SchemaViolationError{
			Kind:  qcErrors.MalformedLine,
			File:  n.filename,
			Line:  lineNumber,
			Value: line,
		}
	}

	chrom := strings.TrimSpace(rowComponents[n.chromIndex])
	ref := strings.TrimSpace(rowComponents[n.refIndex])
	alt := strings.TrimSpace(rowComponents[n.altIndex])

	pos, err := strconv.Atoi(strings.TrimSpace(rowComponents[n.posIndex]))
	if err != nil || pos < 0 {
		return models.VariantRecord{}, &qcErrors.SchemaViolationError{
			Kind:       qcErrors.UnparseableNumber,
			File:       n.filename,
			Line:       lineNumber,
			Chromosome: chrom,
			Field:      "POS",
			Value:      rowComponents[n.posIndex],
		}
	}

	fields, err := projectInfo(parseInfo(rowComponents[n.infoIndex]))
	if err != nil {
		if sv, ok := err.(*qcErrors.SchemaViolationError); ok {
			sv.File, sv.Line, sv.Chromosome = n.filename, lineNumber, chrom
		}
		return models.VariantRecord{}, err
	}

	return models.VariantRecord{
		Id:            models.MakeVariantId(chrom, pos, ref, alt),
		Chromosome:    chrom,
		Position:      pos,
		Ref:           ref,
		Alt:           alt,
		Maf:           null.FloatFromPtr(fields.Maf),
		Rsq:           null.FloatFromPtr(fields.Rsq),
		EmpiricalRsq:  null.FloatFromPtr(fields.EmpiricalRsq),
		GenotypedFlag: strconv.FormatBool(fields.Typed || fields.TypedOnly),
		SourceFile:    n.filename,
	}, nil
}

// parseInfo splits an INFO column into ordered key/value pairs. Entries
// without '=' are flags and carry the value true; '.' values are missing.
func parseInfo(info string) []infoPair {
	var pairs []infoPair

	for _, entry := range strings.Split(strings.TrimSpace(info), ";") {
		if entry == "" || entry == "." {
			continue
		}

		key, value, found := strings.Cut(entry, "=")
		if !found {
			pairs = append(pairs, infoPair{Key: key, Value: true})
			continue
		}
		if value == "." || value == "" {
			continue
		}
		pairs = append(pairs, infoPair{Key: key, Value: value})
	}

	return pairs
}

// projectInfo keeps the first occurrence of each key and decodes the known
// ones onto infoFields.
func projectInfo(pairs []infoPair) (infoFields, error) {
	var fields infoFields

	values := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		if _, seen := values[p.Key]; !seen {
			values[p.Key] = p.Value
		}
	}

	// only well-formed, in-range numbers reach the weakly typed decoder,
	// which would otherwise turn a bare flag into 1
	for _, k := range numericInfoKeys {
		value, present := values[k.key]
		if !present {
			continue
		}

		raw, ok := value.(string)
		if !ok {
			return fields, &qcErrors.SchemaViolationError{
				Kind:  qcErrors.UnparseableNumber,
				Field: k.key,
				Value: fmt.Sprint(value),
			}
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || !inBounds(k.column, f) {
			return fields, &qcErrors.SchemaViolationError{
				Kind:  qcErrors.UnparseableNumber,
				Field: k.key,
				Value: raw,
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if err != nil {
		return fields, err
	}
	if err := decoder.Decode(values); err != nil {
		return fields, &qcErrors.SchemaViolationError{
			Kind:  qcErrors.UnparseableNumber,
			Field: "INFO",
			Value: err.Error(),
		}
	}

	return fields, nil
}
