package causality

import (
	"testing"

	"drugwatch/domain/signal"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// TestAssess_CertainRequiresRechallenge walks the top of the WHO-UMC ladder
func TestAssess_CertainRequiresRechallenge(t *testing.T) {
	assessor := NewAssessor()

	probable := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(5),
		DechallengeImproved: true,
	})
	if probable.WHOUMCCategory != signal.CausalityProbable {
		t.Errorf("Expected probable, got %s", probable.WHOUMCCategory)
	}

	certain := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(5),
		DechallengeImproved: true,
		RechallengeRecurred: boolPtr(true),
	})
	if certain.WHOUMCCategory != signal.CausalityCertain {
		t.Errorf("Expected certain, got %s", certain.WHOUMCCategory)
	}
	if certain.Probability <= probable.Probability {
		t.Errorf("Certain probability %f should exceed probable %f", certain.Probability, probable.Probability)
	}
}

// TestAssess_TemporalImplausibility verifies onset outside the window
// dominates other evidence.
func TestAssess_TemporalImplausibility(t *testing.T) {
	assessor := NewAssessor()
	result := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(-10),
		DechallengeImproved: true,
	})
	if result.WHOUMCCategory != signal.CausalityUnlikely {
		t.Errorf("Expected unlikely for negative onset, got %s", result.WHOUMCCategory)
	}
}

// TestAssess_AlternativeCauses covers unlikely and conditional branches
func TestAssess_AlternativeCauses(t *testing.T) {
	assessor := NewAssessor()

	unlikely := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:   intPtr(10),
		AlternativeCauses: []string{"sepsis"},
	})
	if unlikely.WHOUMCCategory != signal.CausalityUnlikely {
		t.Errorf("Expected unlikely with unopposed alternative cause, got %s", unlikely.WHOUMCCategory)
	}

	conditional := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(10),
		DechallengeImproved: true,
		AlternativeCauses:   []string{"sepsis"},
	})
	if conditional.WHOUMCCategory != signal.CausalityConditional {
		t.Errorf("Expected conditional for confounded evidence, got %s", conditional.WHOUMCCategory)
	}
}

// TestAssess_Unassessable verifies the empty feature set
func TestAssess_Unassessable(t *testing.T) {
	assessor := NewAssessor()
	result := assessor.Assess(signal.ClinicalFeatures{})
	if result.WHOUMCCategory != signal.CausalityUnassessable {
		t.Errorf("Expected unassessable, got %s", result.WHOUMCCategory)
	}
}

// TestNaranjo_Bands checks point totals map to the published bands
func TestNaranjo_Bands(t *testing.T) {
	assessor := NewAssessor()

	// Everything positive: 1+2+1+2+2+1+1 = 10 -> definite
	full := assessor.Assess(signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(3),
		DechallengeImproved: true,
		RechallengeRecurred: boolPtr(true),
		AlternativeCauses:   []string{},
		DoseResponse:        true,
		KnownReaction:       true,
		LabEvidence:         true,
	})
	if full.NaranjoScore != 10 {
		t.Errorf("Expected score 10, got %d", full.NaranjoScore)
	}
	if full.NaranjoBand != signal.NaranjoDefinite {
		t.Errorf("Expected definite band, got %s", full.NaranjoBand)
	}

	// Missing fields score no points, not negative ones
	empty := assessor.Assess(signal.ClinicalFeatures{})
	if empty.NaranjoScore != 0 {
		t.Errorf("Expected zero score for unassessed features, got %d", empty.NaranjoScore)
	}
	if empty.NaranjoBand != signal.NaranjoDoubtful {
		t.Errorf("Expected doubtful band, got %s", empty.NaranjoBand)
	}
}

// TestAssess_Deterministic verifies repeated assessment is identical
func TestAssess_Deterministic(t *testing.T) {
	assessor := NewAssessor()
	features := signal.ClinicalFeatures{
		TimeToOnsetDays:     intPtr(7),
		DechallengeImproved: true,
		DoseResponse:        true,
	}

	first := assessor.Assess(features)
	second := assessor.Assess(features)

	if first.WHOUMCCategory != second.WHOUMCCategory ||
		first.NaranjoScore != second.NaranjoScore ||
		first.Probability != second.Probability {
		t.Errorf("Expected identical assessments, got %+v vs %+v", first, second)
	}
}
