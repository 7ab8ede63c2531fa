package fusion

// config.go
//
// Every weight and threshold of the fusion model lives here, named and
// overridable. The interaction and tunneling weights are heuristic and have
// no published calibration; treat changes as a product decision, not a
// refactor.

import (
	"fmt"

	"drugwatch/domain/signal"
)

// Config holds every tunable of the fusion engine. Load once at process
// start and never mutate during a request.
type Config struct {
	// Layer blend weights. Renormalized over the layers actually present,
	// so a pair without multi-source evidence is not penalized for it.
	ClassicalWeight float64
	Layer1Weight    float64
	Layer2Weight    float64

	// Layer 1 base term weights
	RarityWeight      float64
	SeriousnessWeight float64
	RecencyWeight     float64

	// Layer 1 interaction term weights. These reward factor co-occurrence:
	// a rare AND serious AND recent pair scores more than the sum of parts.
	RareSeriousWeight   float64
	RareRecentWeight    float64
	SeriousRecentWeight float64
	AllThreeWeight      float64

	// Tunneling: a bounded bonus for pairs just below the classical cutoff
	// whose quantum factors are simultaneously elevated.
	TunnelingBonus        float64 // added to layer 1 when triggered
	TunnelingNearMissBand float64 // classical-score distance below the cutoff
	TunnelingFactorFloor  float64 // a base factor counts as elevated above this
	TunnelingMinFactors   int     // elevated factors required to trigger

	// Recency decay: days for the recency term to halve
	RecencyHalfLifeDays float64

	// Layer 2 term weights
	FrequencyWeight float64
	SeverityWeight  float64
	BurstWeight     float64
	NoveltyWeight   float64
	ConsensusWeight float64
	MechanismWeight float64

	// Consensus: a source is high-confidence above this
	ConsensusConfidenceFloor float64

	// Mechanism plausibility scores by labeling status
	MechanismLabeled   float64
	MechanismUnlabeled float64
	MechanismUnknown   float64

	// Classical sub-score blend inside classicalScore
	ClassicalDisproWeight   float64
	ClassicalBayesWeight    float64
	ClassicalCausalWeight   float64
	ClassicalTemporalWeight float64

	// ClassicalCutoff is the score treated as "classically significant";
	// tunneling looks just below it.
	ClassicalCutoff float64

	// Alert ladder, walked top down; first rung at or below the fusion
	// score wins. Must be ordered by descending Min and end at 0.
	AlertLadder []AlertRung
}

// AlertRung maps a minimum fusion score to an alert level
type AlertRung struct {
	Level signal.AlertLevel
	Min   float64
}

// DefaultConfig returns the standard fusion tuning
func DefaultConfig() Config {
	return Config{
		ClassicalWeight: 0.45,
		Layer1Weight:    0.35,
		Layer2Weight:    0.20,

		RarityWeight:      0.20,
		SeriousnessWeight: 0.20,
		RecencyWeight:     0.20,

		RareSeriousWeight:   0.10,
		RareRecentWeight:    0.08,
		SeriousRecentWeight: 0.08,
		AllThreeWeight:      0.14,

		TunnelingBonus:        0.05,
		TunnelingNearMissBand: 0.15,
		TunnelingFactorFloor:  0.70,
		TunnelingMinFactors:   2,

		RecencyHalfLifeDays: 90,

		FrequencyWeight: 0.15,
		SeverityWeight:  0.20,
		BurstWeight:     0.20,
		NoveltyWeight:   0.15,
		ConsensusWeight: 0.15,
		MechanismWeight: 0.15,

		ConsensusConfidenceFloor: 0.70,

		MechanismLabeled:   0.90,
		MechanismUnlabeled: 0.40,
		MechanismUnknown:   0.50,

		ClassicalDisproWeight:   0.50,
		ClassicalBayesWeight:    0.20,
		ClassicalCausalWeight:   0.15,
		ClassicalTemporalWeight: 0.15,

		ClassicalCutoff: 0.50,

		AlertLadder: []AlertRung{
			{signal.AlertCritical, 0.85},
			{signal.AlertHigh, 0.70},
			{signal.AlertModerate, 0.50},
			{signal.AlertLow, 0.30},
			{signal.AlertNone, 0.0},
		},
	}
}

// Validate rejects configurations the fusion math cannot use
func (c Config) Validate() error {
	if c.ClassicalWeight < 0 || c.Layer1Weight < 0 || c.Layer2Weight < 0 {
		return fmt.Errorf("layer weights must be non-negative")
	}
	if c.ClassicalWeight+c.Layer1Weight+c.Layer2Weight == 0 {
		return fmt.Errorf("at least one layer weight must be positive")
	}
	if c.RecencyHalfLifeDays <= 0 {
		return fmt.Errorf("recency half-life must be positive, got %f", c.RecencyHalfLifeDays)
	}
	if c.TunnelingBonus < 0 || c.TunnelingBonus > 0.5 {
		return fmt.Errorf("tunneling bonus out of range: %f", c.TunnelingBonus)
	}
	if len(c.AlertLadder) == 0 {
		return fmt.Errorf("alert ladder is empty")
	}
	for i := 1; i < len(c.AlertLadder); i++ {
		if c.AlertLadder[i].Min >= c.AlertLadder[i-1].Min {
			return fmt.Errorf("alert ladder not descending at rung %d", i)
		}
	}
	if last := c.AlertLadder[len(c.AlertLadder)-1]; last.Min != 0 {
		return fmt.Errorf("alert ladder must end at 0, got %f", last.Min)
	}
	return nil
}

// alertFor walks the ladder top down and returns the first rung the score
// reaches.
func (c Config) alertFor(score float64) signal.AlertLevel {
	for _, rung := range c.AlertLadder {
		if score >= rung.Min {
			return rung.Level
		}
	}
	return signal.AlertNone
}
