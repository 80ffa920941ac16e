package inclusion

import (
	"imputeqc/pipeline/models"
	"imputeqc/pipeline/models/constants/genotype"
)

// Evaluate applies the inclusion rules to a single variant. Variants
// missing rsq, maf or chromosome are untested and pass nothing.
//
// Without a rare threshold, a variant below the MAF cutoff can only be
// included by being genotyped; high quality alone does not rescue it.
func Evaluate(v *models.ClassifiedVariant, cfg models.InclusionConfig) models.InclusionFlags {
	if !v.IsTested() {
		return models.InclusionFlags{}
	}

	maf, rsq := v.Maf.Float64, v.Rsq.Float64

	flags := models.InclusionFlags{
		Tested:     true,
		PassTyped:  genotype.IsGenotyped(v.Genotype),
		PassCommon: rsq >= cfg.RsqCommon && maf >= cfg.MafCutoff,
	}

	if cfg.HasRareThreshold() {
		flags.PassRare = rsq >= cfg.RsqRare.Float64 && maf < cfg.MafCutoff
		flags.Included = flags.PassRare || flags.PassCommon || flags.PassTyped
	} else {
		flags.PassMaf = maf >= cfg.MafCutoff
		flags.Included = (flags.PassCommon && flags.PassMaf) || flags.PassTyped
	}

	return flags
}

// EvaluateAll returns one set of flags per variant, index aligned.
func EvaluateAll(variants []models.ClassifiedVariant, cfg models.InclusionConfig) []models.InclusionFlags {
	flags := make([]models.InclusionFlags, len(variants))
	for i := range variants {
		flags[i] = Evaluate(&variants[i], cfg)
	}
	return flags
}
