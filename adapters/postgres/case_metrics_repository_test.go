package postgres

import (
	"strings"
	"testing"

	"drugwatch/domain/signal"
)

func TestBuildFilter_Unfiltered(t *testing.T) {
	filter, args := buildFilter(signal.QuerySpec{Window: signal.WindowAll}, 3)
	if filter != "TRUE" {
		t.Errorf("Expected bare TRUE filter, got %q", filter)
	}
	if len(args) != 0 {
		t.Errorf("Expected no args, got %v", args)
	}
}

func TestBuildFilter_AllClauses(t *testing.T) {
	filter, args := buildFilter(signal.QuerySpec{
		SeriousOnly: true,
		Window:      signal.WindowLast12Months,
		Regions:     []string{"EU", "US"},
		AgeRange:    &signal.AgeRange{Min: 18, Max: 65},
	}, 3)

	for _, want := range []string{"serious", "report_date >= $3", "report_date < $4", "region IN ($5, $6)", "age BETWEEN $7 AND $8"} {
		if !strings.Contains(filter, want) {
			t.Errorf("Filter missing %q: %s", want, filter)
		}
	}
	if len(args) != 6 {
		t.Errorf("Expected 6 args, got %d: %v", len(args), args)
	}
}

func TestBuildFilter_PlaceholderOffset(t *testing.T) {
	filter, _ := buildFilter(signal.QuerySpec{Regions: []string{"JP"}, Window: signal.WindowAll}, 1)
	if !strings.Contains(filter, "region IN ($1)") {
		t.Errorf("Expected placeholders to start at $1, got %s", filter)
	}
}
