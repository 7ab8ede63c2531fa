package ports

import (
	"context"

	"drugwatch/domain/core"
)

// TermMatch is the canonical form of a requested reaction term
type TermMatch struct {
	Canonical  core.EventKey `json:"canonical"`
	Confidence float64       `json:"confidence"` // 0-1 mapping confidence
}

// TerminologyMapper normalizes free-text reaction terms to canonical event
// keys. Zero-or-one match per term: the router drops terms with no match
// rather than guessing.
type TerminologyMapper interface {
	// Normalize maps one requested term to its canonical event, or reports
	// no match via the boolean.
	Normalize(ctx context.Context, term string) (TermMatch, bool, error)
}
