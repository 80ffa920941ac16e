package sampling

import (
	"fmt"
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants"
	"imputeqc/pipeline/models/constants/genotype"
	"strconv"
	"testing"

	. "github.com/ahmetb/go-linq"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"
)

// population builds perChromosome[c-1] variants of genotype g on each
// chromosome c.
func population(g constants.Genotype, perChromosome ...int) []models.ClassifiedVariant {
	var variants []models.ClassifiedVariant
	for i, n := range perChromosome {
		c := i + 1
		for p := 0; p < n; p++ {
			variants = append(variants, models.ClassifiedVariant{
				VariantRecord: models.VariantRecord{
					Id:         fmt.Sprintf("%d:%d:A:G", c, p),
					Chromosome: strconv.Itoa(c),
					Position:   p,
					Maf:        null.FloatFrom(0.1),
					Rsq:        null.FloatFrom(0.9),
				},
				ChromosomeNumber: c,
				Genotype:         g,
			})
		}
	}
	return variants
}

func countOn(sampled []models.ClassifiedVariant, g constants.Genotype, c int) int {
	return From(sampled).WhereT(func(v models.ClassifiedVariant) bool {
		return v.Genotype == g && v.ChromosomeNumber == c
	}).Count()
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.1, Rate(100, 1000))
	assert.Equal(t, 1.0, Rate(100, 50))
	assert.Equal(t, 1.0, Rate(100, 100))
	assert.Equal(t, 0.0, Rate(100, 0))
	assert.Equal(t, 0.0, Rate(0, 10))
}

func TestGroupSize(t *testing.T) {
	assert.Equal(t, 60, GroupSize(600, 0.1))
	assert.Equal(t, 3, GroupSize(25, 0.1))
	assert.Equal(t, 0, GroupSize(4, 0.1))
	assert.Equal(t, 1, GroupSize(5, 0.1))
	assert.Equal(t, 7, GroupSize(7, 1))
}

func TestSample(t *testing.T) {
	// 1000 imputed variants over three chromosomes, 40 genotyped ones
	variants := append(population(genotype.Imputed, 600, 300, 100), population(genotype.Genotyped, 30, 10)...)

	sampled := Sample(variants, 100, 42)

	t.Run("should sample every chromosome at the same rate", func(t *testing.T) {
		assert.Equal(t, 60, countOn(sampled, genotype.Imputed, 1))
		assert.Equal(t, 30, countOn(sampled, genotype.Imputed, 2))
		assert.Equal(t, 10, countOn(sampled, genotype.Imputed, 3))
	})

	t.Run("should keep a subset smaller than k whole", func(t *testing.T) {
		assert.Equal(t, 30, countOn(sampled, genotype.Genotyped, 1))
		assert.Equal(t, 10, countOn(sampled, genotype.Genotyped, 2))
	})

	t.Run("should order by chromosome then position", func(t *testing.T) {
		for i := 1; i < len(sampled); i++ {
			prev, cur := sampled[i-1], sampled[i]
			ordered := prev.ChromosomeNumber < cur.ChromosomeNumber ||
				(prev.ChromosomeNumber == cur.ChromosomeNumber && prev.Position <= cur.Position)
			assert.True(t, ordered, "index %d", i)
		}
	})

	t.Run("should not draw a variant twice", func(t *testing.T) {
		distinct := From(sampled).SelectT(func(v models.ClassifiedVariant) string {
			return string(v.Genotype) + v.Id
		}).Distinct().Count()
		assert.Equal(t, len(sampled), distinct)
	})

	t.Run("should be reproducible for a seed", func(t *testing.T) {
		assert.Equal(t, sampled, Sample(variants, 100, 42))
	})

	t.Run("should vary with the seed", func(t *testing.T) {
		assert.NotEqual(t, sampled, Sample(variants, 100, 7))
	})
}

func TestSampleLargerThanPopulation(t *testing.T) {
	variants := append(population(genotype.Imputed, 5, 5), population(genotype.Genotyped, 3)...)

	sampled := Sample(variants, 1000, 1)
	assert.Len(t, sampled, len(variants))
}

func TestSampleSkipsVariantsWithoutChromosome(t *testing.T) {
	variants := population(genotype.Imputed, 10)
	orphan := variants[0]
	orphan.Id = "orphan"
	orphan.Chromosome = ""
	orphan.ChromosomeNumber = 0
	variants = append(variants, orphan)

	sampled := Sample(variants, 100, 1)
	assert.Len(t, sampled, 10)
	assert.Equal(t, 0, From(sampled).WhereT(func(v models.ClassifiedVariant) bool {
		return v.Id == "orphan"
	}).Count())
}

func TestSampleEmpty(t *testing.T) {
	assert.Empty(t, Sample(nil, 100, 1))
}
