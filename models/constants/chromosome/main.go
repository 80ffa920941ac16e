package chromosome

import (
	"fmt"
	qcErrors "imputeqc/pipeline/models/errors"
	"sort"
	"strconv"
	"strings"
)

const (
	First = 1
	Last  = 22
)

func ValidListOfAutosomes() []int {
	var autosomes []int
	for i := First; i <= Last; i++ {
		autosomes = append(autosomes, i)
	}
	return autosomes
}

func IsValidAutosome(number int) bool {
	return number >= First && number <= Last
}

// Normalize reduces a chromosome label ("7", "chr7", "CHR07") to its
// autosome number. The second return value is false when the label does
// not name an autosome in [1,22].
func Normalize(label string) (int, bool) {
	text := strings.TrimSpace(label)
	if len(text) >= 3 && strings.EqualFold(text[:3], "chr") {
		text = text[3:]
	}

	chromNumber, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return chromNumber, IsValidAutosome(chromNumber)
}

// ParseRange expands a comma separated list of chromosome numbers and
// inclusive "start:end" ranges, i.e. "3:5,7" -> [3 4 5 7]. The result is
// ascending and free of duplicates.
func ParseRange(expression string) ([]int, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &qcErrors.InvalidRangeError{Expression: expression, Reason: "no chromosomes requested"}
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(expression, ",") {
		token = strings.TrimSpace(token)

		bounds := strings.Split(token, ":")
		if len(bounds) > 2 {
			return nil, &qcErrors.InvalidRangeError{Expression: expression, Token: token, Reason: "too many ':' separators"}
		}

		var ends []int
		for _, b := range bounds {
			n, err := strconv.Atoi(strings.TrimSpace(b))
			if err != nil {
				return nil, &qcErrors.InvalidRangeError{Expression: expression, Token: token, Reason: "not an integer"}
			}
			if !IsValidAutosome(n) {
				return nil, &qcErrors.InvalidRangeError{
					Expression: expression,
					Token:      token,
					Reason:     fmt.Sprintf("%d is outside [%d,%d]", n, First, Last),
				}
			}
			ends = append(ends, n)
		}

		start, end := ends[0], ends[len(ends)-1]
		if start > end {
			return nil, &qcErrors.InvalidRangeError{Expression: expression, Token: token, Reason: "start is greater than end"}
		}
		for c := start; c <= end; c++ {
			seen[c] = struct{}{}
		}
	}

	chromosomes := make([]int, 0, len(seen))
	for c := range seen {
		chromosomes = append(chromosomes, c)
	}
	sort.Ints(chromosomes)

	return chromosomes, nil
}
