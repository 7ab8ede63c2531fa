package signal

import (
	"math"
	"testing"
)

func TestSanitizeFloat(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"nan", math.NaN(), SanitizedSentinel},
		{"pos_inf", math.Inf(1), SanitizedSentinel},
		{"neg_inf", math.Inf(-1), SanitizedSentinel},
		{"finite", 3.75, 3.75},
		{"zero", 0, 0},
		{"negative", -2.5, -2.5},
	}
	for _, c := range cases {
		if got := SanitizeFloat(c.in); got != c.want {
			t.Errorf("%s: SanitizeFloat(%v) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestClampUnit_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := ClampUnit(v); got != 0 {
			t.Errorf("ClampUnit(%v) = %v, want 0", v, got)
		}
	}
	if got := ClampUnit(1.5); got != 1 {
		t.Errorf("ClampUnit(1.5) = %v, want 1", got)
	}
	if got := ClampUnit(-0.5); got != 0 {
		t.Errorf("ClampUnit(-0.5) = %v, want 0", got)
	}
}

// TestSanitizeResult poisons every float field of a result, including the
// optional multi-source component pointers, and checks nothing non-finite
// survives.
func TestSanitizeResult(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	layer2 := inf
	burst := nan
	consensus := math.Inf(-1)
	result := &CompleteFusionResult{
		ClassicalScore:     nan,
		QuantumScoreLayer1: inf,
		QuantumScoreLayer2: &layer2,
		FusionScore:        nan,
		Percentile:         inf,
		Components: FusionComponents{
			Rarity:      nan,
			Seriousness: inf,
			Recency:     nan,
			RareSerious: inf,
			AllThree:    nan,
			Tunneling:   inf,
			Burst:       &burst,
			Consensus:   &consensus,
		},
		Unified: &UnifiedSignalResult{
			Disproportionality: DisproportionalityResult{
				PRR:        inf,
				PRRCILower: nan,
				ROR:        nan,
				IC:         inf,
				IC025:      nan,
			},
			Bayesian: &BayesianResult{EBGM: nan, EB05: inf, EB95: nan},
		},
	}

	SanitizeResult(result)

	scalars := []struct {
		name string
		v    float64
	}{
		{"classical", result.ClassicalScore},
		{"layer1", result.QuantumScoreLayer1},
		{"layer2", *result.QuantumScoreLayer2},
		{"fusion", result.FusionScore},
		{"percentile", result.Percentile},
		{"rarity", result.Components.Rarity},
		{"seriousness", result.Components.Seriousness},
		{"recency", result.Components.Recency},
		{"rare_serious", result.Components.RareSerious},
		{"all_three", result.Components.AllThree},
		{"tunneling", result.Components.Tunneling},
		{"burst", *result.Components.Burst},
		{"consensus", *result.Components.Consensus},
		{"prr", result.Unified.Disproportionality.PRR},
		{"prr_ci_lower", result.Unified.Disproportionality.PRRCILower},
		{"ror", result.Unified.Disproportionality.ROR},
		{"ic", result.Unified.Disproportionality.IC},
		{"ic025", result.Unified.Disproportionality.IC025},
		{"ebgm", result.Unified.Bayesian.EBGM},
		{"eb05", result.Unified.Bayesian.EB05},
		{"eb95", result.Unified.Bayesian.EB95},
	}
	for _, c := range scalars {
		if c.v != SanitizedSentinel {
			t.Errorf("%s not sanitized to the sentinel: %v", c.name, c.v)
		}
	}

	// Untouched optional pointers stay nil
	if result.Components.Frequency != nil || result.Components.Mechanism != nil {
		t.Error("nil component pointers must stay nil")
	}
}
