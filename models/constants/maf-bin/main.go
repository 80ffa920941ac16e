package mafBin

import (
	"imputeqc/pipeline/models/constants"
	"math"
	"sort"
)

const (
	Unknown constants.MafBin = ""

	Below005   constants.MafBin = "< 0.05%"
	From005    constants.MafBin = "0.05% to 0.1%"
	From01     constants.MafBin = "0.1% to 0.5%"
	From05     constants.MafBin = "0.5% to 1%"
	From1      constants.MafBin = "1% to 2%"
	From2      constants.MafBin = "2% to 5%"
	AboveOrAt5 constants.MafBin = "≥ 5%"
)

// Breakpoints between consecutive bins. A value sitting exactly on a
// breakpoint belongs to the bin above it, so 0.0005 is "0.05% to 0.1%".
var Breakpoints = []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05}

// Ordered holds every bin, lowest frequencies first.
var Ordered = []constants.MafBin{Below005, From005, From01, From05, From1, From2, AboveOrAt5}

func Assign(maf float64) constants.MafBin {
	if math.IsNaN(maf) {
		return Unknown
	}
	i := sort.Search(len(Breakpoints), func(i int) bool {
		return Breakpoints[i] > maf
	})
	return Ordered[i]
}

// Rank returns the position of bin in Ordered, or -1 for Unknown.
func Rank(bin constants.MafBin) int {
	for i, b := range Ordered {
		if b == bin {
			return i
		}
	}
	return -1
}
