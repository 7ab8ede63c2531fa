package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"drugwatch/domain/signal"
	"drugwatch/internal/errors"
	"drugwatch/ports"
)

// HTMLWriter renders a ranked result list as a markdown narrative and saves
// the HTML rendering. The markdown source is kept alongside so reviewers
// can diff report revisions as text.
type HTMLWriter struct {
	dir string
	now func() time.Time
}

// NewHTMLWriter creates a writer that lands reports in dir
func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir, now: time.Now}
}

var _ ports.ReportWriter = (*HTMLWriter)(nil)

// WriteReport implements ports.ReportWriter
func (w *HTMLWriter) WriteReport(_ context.Context, title string, results []*signal.CompleteFusionResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.ExportFailed("report directory", err)
	}

	source := BuildMarkdown(title, results, w.now())
	rendered := RenderHTML(source)

	stamp := w.now().Format("20060102-150405")
	mdPath := filepath.Join(w.dir, fmt.Sprintf("report-%s.md", stamp))
	htmlPath := filepath.Join(w.dir, fmt.Sprintf("report-%s.html", stamp))

	if err := os.WriteFile(mdPath, []byte(source), 0o644); err != nil {
		return "", errors.ExportFailed("markdown report", err)
	}
	if err := os.WriteFile(htmlPath, rendered, 0o644); err != nil {
		return "", errors.ExportFailed("html report", err)
	}
	return htmlPath, nil
}

// BuildMarkdown renders the report narrative. Results are written in the
// order given; ranking happened upstream.
func BuildMarkdown(title string, results []*signal.CompleteFusionResult, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s. %d signal(s) evaluated.\n\n", generatedAt.Format("2006-01-02 15:04 MST"), len(results))

	alerts := countAlerts(results)
	if alerts[signal.AlertCritical]+alerts[signal.AlertHigh] > 0 {
		fmt.Fprintf(&b, "**Attention: %d critical, %d high alert(s).**\n\n",
			alerts[signal.AlertCritical], alerts[signal.AlertHigh])
	}

	b.WriteString("| Rank | Drug | Event | Fusion | Alert | Strength | Methods |\n")
	b.WriteString("|-----:|------|-------|-------:|-------|----------|--------|\n")
	for _, r := range results {
		strength, methods := "-", "-"
		if r.Unified != nil {
			strength = r.Unified.SignalStrength.String()
			if len(r.Unified.MethodsFlagged) > 0 {
				methods = strings.Join(r.Unified.MethodsFlagged, ", ")
			}
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f | %s | %s | %s |\n",
			r.QuantumRank, r.Drug, r.Event, r.FusionScore, r.AlertLevel, strength, methods)
	}
	b.WriteString("\n")

	for _, r := range results {
		if r.AlertLevel == signal.AlertNone {
			continue
		}
		fmt.Fprintf(&b, "## %s / %s\n\n", r.Drug, r.Event)
		fmt.Fprintf(&b, "%s\n\n", r.Explanation)
		fmt.Fprintf(&b, "- Classical score: %.3f (rank %d)\n", r.ClassicalScore, r.ClassicalRank)
		fmt.Fprintf(&b, "- Quantum layer 1: %.3f\n", r.QuantumScoreLayer1)
		if r.QuantumScoreLayer2 != nil {
			fmt.Fprintf(&b, "- Quantum layer 2: %.3f\n", *r.QuantumScoreLayer2)
		}
		if r.Components.Tunneling > 0 {
			fmt.Fprintf(&b, "- Tunneling bonus: %.3f\n", r.Components.Tunneling)
		}
		if r.Unified != nil {
			d := r.Unified.Disproportionality
			fmt.Fprintf(&b, "- PRR %.2f [%.2f, %.2f], ROR %.2f, IC025 %.2f\n",
				d.PRR, d.PRRCILower, d.PRRCIUpper, d.ROR, d.IC025)
			if r.Unified.Bayesian != nil {
				fmt.Fprintf(&b, "- EBGM %.2f [EB05 %.2f, EB95 %.2f]\n",
					r.Unified.Bayesian.EBGM, r.Unified.Bayesian.EB05, r.Unified.Bayesian.EB95)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts the markdown narrative to a standalone HTML fragment
func RenderHTML(source string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(source), p, renderer)
}

func countAlerts(results []*signal.CompleteFusionResult) map[signal.AlertLevel]int {
	counts := make(map[signal.AlertLevel]int)
	for _, r := range results {
		counts[r.AlertLevel]++
	}
	return counts
}
