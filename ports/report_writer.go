package ports

import (
	"context"

	"drugwatch/domain/signal"
)

// ReportWriter exports a ranked result list to a reviewable artifact
// (spreadsheet, rendered report). Writers never reorder the results they
// are given; ranking is the engine's job.
type ReportWriter interface {
	// WriteReport persists the ranked results and returns the artifact path
	WriteReport(ctx context.Context, title string, results []*signal.CompleteFusionResult) (string, error)
}
