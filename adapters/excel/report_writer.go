package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"drugwatch/domain/signal"
	"drugwatch/internal/errors"
	"drugwatch/ports"
)

// ReportWriter exports a ranked result list as a reviewer spreadsheet, one
// row per pair in the order given.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer that lands files in dir
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

var _ ports.ReportWriter = (*ReportWriter)(nil)

var reportHeader = []string{
	"Rank", "Drug", "Event", "Fusion Score", "Alert Level", "Classical Score",
	"Layer 1", "Layer 2", "Strength", "Methods Flagged", "PRR", "ROR", "IC025",
	"EBGM", "Rarity", "Seriousness", "Tunneling", "Explanation",
}

// WriteReport implements ports.ReportWriter
func (w *ReportWriter) WriteReport(_ context.Context, title string, results []*signal.CompleteFusionResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.ExportFailed("report directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Signals"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return "", errors.ExportFailed("report header", err)
		}
	}

	for i, r := range results {
		values := rowFor(r)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", errors.ExportFailed("report row", err)
			}
		}
	}

	path := filepath.Join(w.dir, fileName(title))
	if err := f.SaveAs(path); err != nil {
		return "", errors.ExportFailed("report workbook", err)
	}
	return path, nil
}

func rowFor(r *signal.CompleteFusionResult) []interface{} {
	layer2 := ""
	if r.QuantumScoreLayer2 != nil {
		layer2 = fmt.Sprintf("%.4f", *r.QuantumScoreLayer2)
	}

	var strength, methods string
	var prr, ror, ic025, ebgm float64
	if r.Unified != nil {
		strength = r.Unified.SignalStrength.String()
		methods = strings.Join(r.Unified.MethodsFlagged, ", ")
		prr = r.Unified.Disproportionality.PRR
		ror = r.Unified.Disproportionality.ROR
		ic025 = r.Unified.Disproportionality.IC025
		if r.Unified.Bayesian != nil {
			ebgm = r.Unified.Bayesian.EBGM
		}
	}

	return []interface{}{
		r.QuantumRank,
		r.Drug.String(),
		r.Event.String(),
		r.FusionScore,
		string(r.AlertLevel),
		r.ClassicalScore,
		r.QuantumScoreLayer1,
		layer2,
		strength,
		methods,
		prr,
		ror,
		ic025,
		ebgm,
		r.Components.Rarity,
		r.Components.Seriousness,
		r.Components.Tunneling,
		r.Explanation,
	}
}

func fileName(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "signals"
	}
	return fmt.Sprintf("%s-%s.xlsx", slug, time.Now().Format("20060102-150405"))
}
