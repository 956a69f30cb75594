package model

import "time"

// Tier is the coarse qualification bucket derived from a numeric score.
type Tier string

const (
	TierHot  Tier = "Hot"
	TierWarm Tier = "Warm"
	TierCold Tier = "Cold"
)

// ScoreResult is the outcome of scoring one contact against one framework.
// Recomputation with identical inputs yields an identical value.
type ScoreResult struct {
	Framework string         `json:"framework"`
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
	Tier      Tier           `json:"tier"`
	ScoredAt  time.Time      `json:"scored_at,omitempty"`
}

// ICPCriteria is an externally supplied ideal-client-profile definition.
// A criterion with zero weight or no configured values is not evaluated;
// it is excluded from both numerator and denominator, never penalized.
// Weights must sum to at most 100.
type ICPCriteria struct {
	Name           string   `json:"name" yaml:"name"`
	Industries     []string `json:"industries,omitempty" yaml:"industries"`
	IndustryWeight int      `json:"industry_weight,omitempty" yaml:"industry_weight"`
	Personas       []string `json:"personas,omitempty" yaml:"personas"`
	PersonaWeight  int      `json:"persona_weight,omitempty" yaml:"persona_weight"`
	CompanySizeMin int      `json:"company_size_min,omitempty" yaml:"company_size_min"`
	CompanySizeMax int      `json:"company_size_max,omitempty" yaml:"company_size_max"`
	SizeWeight     int      `json:"size_weight,omitempty" yaml:"size_weight"`
}

// WeightSum returns the sum of all configured criterion weights.
func (c ICPCriteria) WeightSum() int {
	return c.IndustryWeight + c.PersonaWeight + c.SizeWeight
}
