package causality

import (
	"drugwatch/domain/signal"
)

// Assessor maps clinical features to a causality category and a numeric
// probability. Purely deterministic: no state, no randomness.
type Assessor struct{}

// NewAssessor creates a causality assessor
func NewAssessor() *Assessor {
	return &Assessor{}
}

// categoryProbability anchors each WHO-UMC category to a base probability
var categoryProbability = map[signal.CausalityCategory]float64{
	signal.CausalityCertain:      0.95,
	signal.CausalityProbable:     0.75,
	signal.CausalityPossible:     0.50,
	signal.CausalityConditional:  0.40,
	signal.CausalityUnlikely:     0.15,
	signal.CausalityUnassessable: 0.30,
}

// Naranjo totals from the implemented items span roughly [-2, 10]
const (
	naranjoMin = -2.0
	naranjoMax = 10.0
)

// Assess runs both scoring schemes and blends them into one probability.
// The two schemes stay independently reported so reviewers can see when
// they disagree.
func (a *Assessor) Assess(features signal.ClinicalFeatures) signal.CausalityAssessment {
	category, rationale := assessWHOUMC(features)
	score, band := scoreNaranjo(features)

	normalized := (float64(score) - naranjoMin) / (naranjoMax - naranjoMin)
	probability := signal.ClampUnit((categoryProbability[category] + normalized) / 2)

	return signal.CausalityAssessment{
		WHOUMCCategory: category,
		NaranjoScore:   score,
		NaranjoBand:    band,
		Probability:    probability,
		Rationale:      rationale,
	}
}
