package disprop

import (
	"math"
	"testing"

	"drugwatch/domain/signal"
)

func mustTable(t *testing.T, n11, n10, n01, n00 int) signal.ContingencyTable {
	t.Helper()
	table, err := signal.NewContingencyTable(n11, n10, n01, n00)
	if err != nil {
		t.Fatalf("table construction failed: %v", err)
	}
	return table
}

// TestAnalyze_KnownSignal checks the reference case: 45/1000 vs 120/10000
// gives PRR = 3.75 and must flag under the standard preset.
func TestAnalyze_KnownSignal(t *testing.T) {
	analyzer := NewAnalyzer(ThresholdsForPreset(PresetStandard))
	table := mustTable(t, 45, 955, 120, 9880)

	result := analyzer.Analyze(table)

	if math.Abs(result.PRR-3.75) > 0.01 {
		t.Errorf("Expected PRR ~3.75, got %f", result.PRR)
	}
	if !result.PRRIsSignal {
		t.Errorf("Expected PRR signal for PRR=%f, CI lower=%f", result.PRR, result.PRRCILower)
	}
	if result.PRRCILower <= 1.0 {
		t.Errorf("Expected CI lower bound above 1.0, got %f", result.PRRCILower)
	}
	if !result.RORIsSignal {
		t.Errorf("Expected ROR signal, got ROR=%f lower=%f", result.ROR, result.RORCILower)
	}
	if !result.ICIsSignal {
		t.Errorf("Expected IC signal, got IC025=%f", result.IC025)
	}
}

// TestAnalyze_ZeroCases verifies the n11=0 edge case: all statistics stay at
// their zero sentinel with flags false, and nothing panics.
func TestAnalyze_ZeroCases(t *testing.T) {
	analyzer := NewAnalyzer(ThresholdsForPreset(PresetStandard))
	table := mustTable(t, 0, 100, 50, 5000)

	result := analyzer.Analyze(table)

	if result.PRR != 0 || result.ROR != 0 || result.IC != 0 {
		t.Errorf("Expected zero sentinels, got PRR=%f ROR=%f IC=%f", result.PRR, result.ROR, result.IC)
	}
	if result.PRRIsSignal || result.RORIsSignal || result.ICIsSignal {
		t.Error("Expected no signal flags for n11=0")
	}
}

// TestAnalyze_EmptyComparator verifies zero marginals never raise
func TestAnalyze_EmptyComparator(t *testing.T) {
	analyzer := NewAnalyzer(ThresholdsForPreset(PresetStandard))
	table := mustTable(t, 10, 90, 0, 0)

	result := analyzer.Analyze(table)

	if result.PRRIsSignal || result.RORIsSignal {
		t.Error("Expected no ratio signal without comparator data")
	}
}

// TestAnalyze_CIOrdering checks CI_lower <= point <= CI_upper for positive tables
func TestAnalyze_CIOrdering(t *testing.T) {
	analyzer := NewAnalyzer(ThresholdsForPreset(PresetStandard))

	tables := []signal.ContingencyTable{
		mustTable(t, 5, 95, 50, 950),
		mustTable(t, 45, 955, 120, 9880),
		mustTable(t, 1, 9, 10, 100),
		mustTable(t, 200, 1800, 400, 17600),
	}

	for _, table := range tables {
		result := analyzer.Analyze(table)

		if result.PRR <= 0 || result.ROR <= 0 {
			t.Errorf("Expected positive estimates for table %+v", table)
		}
		if result.PRRCILower > result.PRR || result.PRR > result.PRRCIUpper {
			t.Errorf("PRR CI ordering violated: %f <= %f <= %f", result.PRRCILower, result.PRR, result.PRRCIUpper)
		}
		if result.RORCILower > result.ROR || result.ROR > result.RORCIUpper {
			t.Errorf("ROR CI ordering violated: %f <= %f <= %f", result.RORCILower, result.ROR, result.RORCIUpper)
		}
		if result.IC025 > result.IC {
			t.Errorf("IC025 %f should not exceed IC %f", result.IC025, result.IC)
		}
	}
}

// TestAnalyze_MinCasesGate verifies the min_cases threshold suppresses
// single-report signals under the standard preset but not the sensitive one.
func TestAnalyze_MinCasesGate(t *testing.T) {
	table := mustTable(t, 2, 8, 10, 9980)

	standard := NewAnalyzer(ThresholdsForPreset(PresetStandard)).Analyze(table)
	if standard.PRRIsSignal {
		t.Error("Standard preset should suppress n11=2 signal")
	}

	sensitive := NewAnalyzer(ThresholdsForPreset(PresetSensitive)).Analyze(table)
	if !sensitive.PRRIsSignal {
		t.Errorf("Sensitive preset should flag n11=2 with PRR=%f lower=%f", sensitive.PRR, sensitive.PRRCILower)
	}
}

// TestAnalyze_Deterministic verifies repeated calls are bit-identical
func TestAnalyze_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer(ThresholdsForPreset(PresetStandard))
	table := mustTable(t, 45, 955, 120, 9880)

	first := analyzer.Analyze(table)
	second := analyzer.Analyze(table)

	if first != second {
		t.Errorf("Expected identical results, got %+v vs %+v", first, second)
	}
}

func TestThresholdsForPreset_UnknownFallsBack(t *testing.T) {
	got := ThresholdsForPreset(Preset("nonsense"))
	want := ThresholdsForPreset(PresetStandard)
	if got != want {
		t.Errorf("Unknown preset should fall back to standard, got %+v", got)
	}
}
