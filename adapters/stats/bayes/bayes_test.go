package bayes

import (
	"testing"

	"drugwatch/domain/signal"
)

func table(t *testing.T, n11, n10, n01, n00 int) signal.ContingencyTable {
	t.Helper()
	tbl, err := signal.NewContingencyTable(n11, n10, n01, n00)
	if err != nil {
		t.Fatalf("table construction failed: %v", err)
	}
	return tbl
}

// TestDetect_ShrinksSmallCounts verifies a single-report pair with a huge raw
// ratio is pulled down toward the prior while a high-count pair is not.
func TestDetect_ShrinksSmallCounts(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	// One report, raw observed/expected around 18
	small := detector.Detect(table(t, 1, 9, 30, 9960))
	// Many reports, similar raw ratio
	large := detector.Detect(table(t, 80, 920, 130, 8870))

	rawSmall := 1.0 / table(t, 1, 9, 30, 9960).Expected()
	if small.EBGM >= rawSmall {
		t.Errorf("Expected shrinkage below raw ratio %f, got EBGM=%f", rawSmall, small.EBGM)
	}
	if small.IsSignal {
		t.Errorf("Single report should not flag, EB05=%f", small.EB05)
	}
	if !large.IsSignal {
		t.Errorf("High-count disproportionality should flag, EB05=%f", large.EB05)
	}
}

// TestDetect_ZeroObserved verifies the n11=0 sentinel path
func TestDetect_ZeroObserved(t *testing.T) {
	detector := NewDetector(DefaultConfig())
	result := detector.Detect(table(t, 0, 100, 50, 5000))

	if result.EBGM != 0 || result.EB05 != 0 || result.IsSignal {
		t.Errorf("Expected zero sentinel for n11=0, got %+v", result)
	}
}

// TestDetect_CredibilityOrdering checks EB05 <= EBGM <= EB95
func TestDetect_CredibilityOrdering(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	cases := []signal.ContingencyTable{
		table(t, 5, 95, 50, 950),
		table(t, 45, 955, 120, 9880),
		table(t, 200, 1800, 400, 17600),
	}
	for _, c := range cases {
		r := detector.Detect(c)
		if r.EB05 > r.EBGM || r.EBGM > r.EB95 {
			t.Errorf("Credibility ordering violated: %f <= %f <= %f for %+v", r.EB05, r.EBGM, r.EB95, c)
		}
	}
}

// TestDetect_ModelPluggable verifies the simplified model can be swapped in
func TestDetect_ModelPluggable(t *testing.T) {
	detector := NewDetectorWithModel(&SimplifiedModel{}, 2.0)
	result := detector.Detect(table(t, 45, 955, 120, 9880))

	if result.Model != "simplified" {
		t.Errorf("Expected simplified model name, got %s", result.Model)
	}
	if result.EBGM <= 0 {
		t.Errorf("Expected positive ratio, got %f", result.EBGM)
	}
}

// TestDetect_Deterministic verifies bit-identical repeated results
func TestDetect_Deterministic(t *testing.T) {
	detector := NewDetector(DefaultConfig())
	tbl := table(t, 45, 955, 120, 9880)

	if detector.Detect(tbl) != detector.Detect(tbl) {
		t.Error("Expected identical results for identical inputs")
	}
}
