package sampling

import (
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	"imputeqc/pipeline/models/constants/genotype"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Sample draws a subsample of roughly k Genotyped and k Imputed variants
// for plotting. Within each subset every chromosome is sampled at the same
// rate, min(1, k/N), without replacement. The result is sorted by
// chromosome then position and is reproducible for a given seed.
//
// Variants without a chromosome are never sampled.
func Sample(variants []models.ClassifiedVariant, k int, seed uint64) []models.ClassifiedVariant {
	src := rand.NewSource(seed)

	var sampled []models.ClassifiedVariant
	for _, g := range []constants.Genotype{genotype.Genotyped, genotype.Imputed} {
		sampled = append(sampled, sampleSubset(variants, g, k, src)...)
	}

	sort.SliceStable(sampled, func(i, j int) bool {
		if sampled[i].ChromosomeNumber != sampled[j].ChromosomeNumber {
			return sampled[i].ChromosomeNumber < sampled[j].ChromosomeNumber
		}
		return sampled[i].Position < sampled[j].Position
	})

	return sampled
}

// Rate is the per-chromosome sampling fraction for a subset of size n.
func Rate(k int, n int) float64 {
	if n <= 0 || k <= 0 {
		return 0
	}
	return math.Min(1, float64(k)/float64(n))
}

// GroupSize is the number of variants drawn from a chromosome group of
// size n at the given rate.
func GroupSize(n int, rate float64) int {
	size := int(math.Round(float64(n) * rate))
	if size > n {
		return n
	}
	return size
}

func sampleSubset(variants []models.ClassifiedVariant, g constants.Genotype, k int, src rand.Source) []models.ClassifiedVariant {
	groups := make(map[int][]int)
	total := 0
	for i := range variants {
		v := &variants[i]
		if v.Genotype != g || v.ChromosomeNumber == 0 {
			continue
		}
		groups[v.ChromosomeNumber] = append(groups[v.ChromosomeNumber], i)
		total++
	}

	rate := Rate(k, total)
	if rate == 0 {
		return nil
	}

	// visit chromosomes in a fixed order so the seed fully determines
	// the draw
	chromosomes := make([]int, 0, len(groups))
	for c := range groups {
		chromosomes = append(chromosomes, c)
	}
	sort.Ints(chromosomes)

	var sampled []models.ClassifiedVariant
	for _, c := range chromosomes {
		members := groups[c]
		size := GroupSize(len(members), rate)

		if size == len(members) {
			for _, i := range members {
				sampled = append(sampled, variants[i])
			}
			continue
		}
		if size == 0 {
			continue
		}

		picks := make([]int, size)
		sampleuv.WithoutReplacement(picks, len(members), src)
		sort.Ints(picks)
		for _, p := range picks {
			sampled = append(sampled, variants[members[p]])
		}
	}

	return sampled
}
