package models

import (
	"gopkg.in/guregu/null.v3"
)

type InclusionConfig struct {
	// boundary between "common" (>=) and "rare" (<) variants
	MafCutoff float64 `json:"mafCutoff"`
	RsqCommon float64 `json:"rsqCommon"`
	// invalid (unset) excludes rare imputed variants unless genotyped
	RsqRare null.Float `json:"rsqRare"`
}

func (c InclusionConfig) HasRareThreshold() bool {
	return c.RsqRare.Valid
}
