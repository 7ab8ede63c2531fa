package ports

import (
	"context"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
)

// MetricsProvider is the sole data-access seam between the computational
// core and external case databases. Everything past this interface is I/O;
// everything before it is pure computation.
type MetricsProvider interface {
	// FetchEvidence returns the aggregated evidence for one drug-event pair
	// under the query's filters. A pair with no matching data returns
	// core.ErrEvidenceUnavailable; the router skips it silently.
	FetchEvidence(ctx context.Context, drug core.DrugKey, event core.EventKey, spec signal.QuerySpec) (signal.Evidence, error)

	// TotalCases returns the database denominator under the query's filters
	TotalCases(ctx context.Context, spec signal.QuerySpec) (int, error)
}
