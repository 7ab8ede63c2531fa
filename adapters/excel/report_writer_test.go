package excel

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
)

func TestWriteReport_RoundTrip(t *testing.T) {
	writer := NewReportWriter(t.TempDir())

	layer2 := 0.42
	results := []*signal.CompleteFusionResult{
		{
			Drug:               core.DrugKey("drugx"),
			Event:              core.EventKey("hepatotoxicity"),
			FusionScore:        0.81,
			AlertLevel:         signal.AlertHigh,
			ClassicalScore:     0.77,
			QuantumScoreLayer1: 0.6,
			QuantumScoreLayer2: &layer2,
			QuantumRank:        1,
			Explanation:        "high alert",
		},
		{
			Drug:        core.DrugKey("drugy"),
			Event:       core.EventKey("rash"),
			FusionScore: 0.22,
			AlertLevel:  signal.AlertNone,
			QuantumRank: 2,
		},
	}

	path, err := writer.WriteReport(context.Background(), "Weekly Review", results)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if !strings.Contains(path, "weekly-review") {
		t.Errorf("Expected slugged file name, got %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Signals")
	if err != nil {
		t.Fatalf("sheet read failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "drugx" || rows[1][2] != "hepatotoxicity" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if rows[2][4] != "none" {
		t.Errorf("Expected alert level in column 5, got %v", rows[2])
	}
}

func TestFileName_Slug(t *testing.T) {
	name := fileName("Weekly Review: Q3!")
	if !strings.HasPrefix(name, "weekly-review--q3") {
		t.Errorf("Unexpected slug %s", name)
	}
	if !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("Expected .xlsx suffix, got %s", name)
	}
}
