package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/internal/errors"
	"drugwatch/ports"
)

// CaseMetricsRepository implements ports.MetricsProvider over a case_reports
// table. One row per individual case report:
//
//	case_reports(id, drug, event, serious, report_date, source,
//	             source_confidence, outcome, region, age)
//
// All aggregation happens in SQL; the computational core never sees rows.
type CaseMetricsRepository struct {
	db *sqlx.DB
}

// NewCaseMetricsRepository creates the repository
func NewCaseMetricsRepository(db *sqlx.DB) *CaseMetricsRepository {
	return &CaseMetricsRepository{db: db}
}

// Connect opens and pings a postgres connection
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("connect", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

var _ ports.MetricsProvider = (*CaseMetricsRepository)(nil)

// FetchEvidence aggregates the evidence for one drug-event pair under the
// query's filters. Pairs with no co-reported cases return
// core.ErrEvidenceUnavailable so the router can skip them silently.
func (r *CaseMetricsRepository) FetchEvidence(ctx context.Context, drug core.DrugKey, event core.EventKey, spec signal.QuerySpec) (signal.Evidence, error) {
	filter, args := buildFilter(spec, 3)

	var counts struct {
		N11       int `db:"n11"`
		Serious   int `db:"serious"`
		DrugTotal int `db:"drug_total"`
		EvtTotal  int `db:"event_total"`
		Total     int `db:"total"`
	}
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE drug = $1 AND event = $2)               AS n11,
			COUNT(*) FILTER (WHERE drug = $1 AND event = $2 AND serious)   AS serious,
			COUNT(*) FILTER (WHERE drug = $1)                              AS drug_total,
			COUNT(*) FILTER (WHERE event = $2)                             AS event_total,
			COUNT(*)                                                       AS total
		FROM case_reports
		WHERE %s`, filter)

	allArgs := append([]interface{}{drug.String(), event.String()}, args...)
	if err := r.db.GetContext(ctx, &counts, query, allArgs...); err != nil {
		return signal.Evidence{}, errors.DatabaseError("pair counts", err)
	}
	if counts.N11 == 0 {
		return signal.Evidence{}, core.ErrEvidenceUnavailable
	}

	table, err := signal.NewContingencyTable(
		counts.N11,
		counts.DrugTotal-counts.N11,
		counts.EvtTotal-counts.N11,
		counts.Total-counts.DrugTotal-counts.EvtTotal+counts.N11,
	)
	if err != nil {
		return signal.Evidence{}, err
	}

	evidence := signal.Evidence{
		Count:        counts.N11,
		SeriousCount: counts.Serious,
		TotalCases:   counts.Total,
		Table:        &table,
	}

	if err := r.fetchTimeline(ctx, drug, event, filter, allArgs, &evidence); err != nil {
		return signal.Evidence{}, err
	}
	if err := r.fetchSources(ctx, filter, allArgs, &evidence); err != nil {
		return signal.Evidence{}, err
	}
	if err := r.fetchOutcomes(ctx, filter, allArgs, &evidence); err != nil {
		return signal.Evidence{}, err
	}
	return evidence, nil
}

// fetchOutcomes collects the distinct reported outcomes for the pair
func (r *CaseMetricsRepository) fetchOutcomes(ctx context.Context, filter string, args []interface{}, evidence *signal.Evidence) error {
	query := fmt.Sprintf(`
		SELECT DISTINCT outcome
		FROM case_reports
		WHERE drug = $1 AND event = $2 AND outcome <> '' AND %s
		ORDER BY outcome`, filter)

	if err := r.db.SelectContext(ctx, &evidence.Outcomes, query, args...); err != nil {
		return errors.DatabaseError("outcomes", err)
	}
	return nil
}

// TotalCases returns the database denominator under the query's filters
func (r *CaseMetricsRepository) TotalCases(ctx context.Context, spec signal.QuerySpec) (int, error) {
	filter, args := buildFilter(spec, 1)
	var total int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM case_reports WHERE %s`, filter)
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, errors.DatabaseError("total cases", err)
	}
	return total, nil
}

// fetchTimeline fills the monthly report series and first report date
func (r *CaseMetricsRepository) fetchTimeline(ctx context.Context, drug core.DrugKey, event core.EventKey, filter string, args []interface{}, evidence *signal.Evidence) error {
	type bucket struct {
		Month time.Time `db:"month"`
		N     int       `db:"n"`
	}
	query := fmt.Sprintf(`
		SELECT date_trunc('month', report_date) AS month, COUNT(*) AS n
		FROM case_reports
		WHERE drug = $1 AND event = $2 AND %s
		GROUP BY month
		ORDER BY month`, filter)

	var buckets []bucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return errors.DatabaseError("timeline", err)
	}
	if len(buckets) == 0 {
		return nil
	}

	dates := make([]time.Time, len(buckets))
	counts := make([]int, len(buckets))
	var latest time.Time
	for i, b := range buckets {
		dates[i] = b.Month
		counts[i] = b.N
		if b.Month.After(latest) {
			latest = b.Month
		}
	}
	series, err := signal.NewTimeSeriesData(dates, counts)
	if err != nil {
		return err
	}
	evidence.Series = &series
	evidence.FirstReportDate = buckets[0].Month
	evidence.Dates = []time.Time{latest}
	return nil
}

// fetchSources aggregates per-provenance report counts for the pair
func (r *CaseMetricsRepository) fetchSources(ctx context.Context, filter string, args []interface{}, evidence *signal.Evidence) error {
	type row struct {
		Source     string          `db:"source"`
		N          int             `db:"n"`
		Serious    int             `db:"serious"`
		Confidence sql.NullFloat64 `db:"confidence"`
	}
	query := fmt.Sprintf(`
		SELECT source,
			   COUNT(*)                      AS n,
			   COUNT(*) FILTER (WHERE serious) AS serious,
			   AVG(source_confidence)        AS confidence
		FROM case_reports
		WHERE drug = $1 AND event = $2 AND %s
		GROUP BY source
		ORDER BY n DESC`, filter)

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return errors.DatabaseError("sources", err)
	}
	for _, s := range rows {
		source := signal.Source{
			Name:        s.Source,
			ReportCount: s.N,
			Confidence:  0.5,
		}
		if s.Confidence.Valid {
			source.Confidence = s.Confidence.Float64
		}
		if s.N > 0 {
			source.SeriousFraction = float64(s.Serious) / float64(s.N)
		}
		evidence.Sources = append(evidence.Sources, source)
	}
	return nil
}

// buildFilter renders the query filters as a WHERE fragment. Placeholders
// start at firstArg so callers can prepend their own parameters.
func buildFilter(spec signal.QuerySpec, firstArg int) (string, []interface{}) {
	clauses := []string{"TRUE"}
	var args []interface{}
	arg := firstArg

	if spec.SeriousOnly {
		clauses = append(clauses, "serious")
	}

	window := spec.Window.Resolve(time.Now())
	if !window.Start.IsZero() {
		clauses = append(clauses, fmt.Sprintf("report_date >= $%d", arg))
		args = append(args, window.Start)
		arg++
	}
	if !window.End.IsZero() {
		clauses = append(clauses, fmt.Sprintf("report_date < $%d", arg))
		args = append(args, window.End)
		arg++
	}
	if len(spec.Regions) > 0 {
		placeholders := make([]string, len(spec.Regions))
		for i, region := range spec.Regions {
			placeholders[i] = fmt.Sprintf("$%d", arg)
			args = append(args, region)
			arg++
		}
		clauses = append(clauses, fmt.Sprintf("region IN (%s)", strings.Join(placeholders, ", ")))
	}
	if spec.AgeRange != nil {
		clauses = append(clauses, fmt.Sprintf("age BETWEEN $%d AND $%d", arg, arg+1))
		args = append(args, spec.AgeRange.Min, spec.AgeRange.Max)
	}

	return strings.Join(clauses, " AND "), args
}
