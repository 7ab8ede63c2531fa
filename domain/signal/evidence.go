package signal

import (
	"time"

	"drugwatch/domain/core"
)

// Evidence is the explicit, validated evidence struct supplied per candidate
// pair by a MetricsProvider. Required versus optional fields are enforced at
// the boundary so missing keys are caught before the fusion math runs.
type Evidence struct {
	Count        int         `json:"count"`         // drug+event reports (required, > 0)
	SeriousCount int         `json:"serious_count"` // reports marked serious
	TotalCases   int         `json:"total_cases"`   // database denominator (required, > 0)
	Dates        []time.Time `json:"dates,omitempty"`
	Outcomes     []string    `json:"outcomes,omitempty"`
	Sources      []Source    `json:"sources,omitempty"`

	Table           *ContingencyTable `json:"table,omitempty"`
	Clinical        *ClinicalFeatures `json:"clinical,omitempty"`
	Series          *TimeSeriesData   `json:"series,omitempty"`
	FirstReportDate time.Time         `json:"first_report_date,omitempty"`
	LabelReactions  []string          `json:"label_reactions,omitempty"`
}

// Source describes one provenance stream contributing reports
type Source struct {
	Name            string  `json:"name"`
	ReportCount     int     `json:"report_count"`
	Confidence      float64 `json:"confidence"` // 0-1 source reliability
	SeriousFraction float64 `json:"serious_fraction"`
}

// IsEmpty reports whether the provider found no matching data
func (e Evidence) IsEmpty() bool {
	return e.Count == 0 && e.Table == nil
}

// Seriousness returns the fraction of cases marked serious
func (e Evidence) Seriousness() float64 {
	if e.Count <= 0 {
		return 0
	}
	f := float64(e.SeriousCount) / float64(e.Count)
	if f > 1 {
		return 1
	}
	return f
}

// MostRecentDate returns the latest report date, zero when none supplied
func (e Evidence) MostRecentDate() time.Time {
	var latest time.Time
	for _, d := range e.Dates {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}

// Validate enforces the structural invariants of direct inputs. Structural
// problems here raise; per-candidate data problems never do.
func (e Evidence) Validate() error {
	if e.Count < 0 {
		return core.NewNegativeCountError("count", e.Count)
	}
	if e.SeriousCount < 0 {
		return core.NewNegativeCountError("serious_count", e.SeriousCount)
	}
	if e.TotalCases <= 0 {
		return core.ErrInvalidTotalCases
	}
	if e.Series != nil {
		if _, err := NewTimeSeriesData(e.Series.Dates, e.Series.Counts); err != nil {
			return err
		}
	}
	if e.Table != nil {
		if _, err := NewContingencyTable(e.Table.N11, e.Table.N10, e.Table.N01, e.Table.N00); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// QUERY SPECIFICATION (boundary input)
// ============================================================================

// TimeWindow is a closed set of window tokens accepted at the query boundary
type TimeWindow string

const (
	WindowAll          TimeWindow = "ALL"
	WindowLast3Months  TimeWindow = "LAST_3_MONTHS"
	WindowLast6Months  TimeWindow = "LAST_6_MONTHS"
	WindowLast12Months TimeWindow = "LAST_12_MONTHS"
	WindowSince2020    TimeWindow = "SINCE_2020"
)

// windowResolvers dispatches window tokens via a lookup table rather than
// an if/elif chain; adding a token is a one-place change.
var windowResolvers = map[TimeWindow]func(now time.Time) core.ReportWindow{
	WindowAll: func(now time.Time) core.ReportWindow {
		return core.ReportWindow{}
	},
	WindowLast3Months: func(now time.Time) core.ReportWindow {
		return core.ReportWindow{Start: now.AddDate(0, -3, 0), End: now}
	},
	WindowLast6Months: func(now time.Time) core.ReportWindow {
		return core.ReportWindow{Start: now.AddDate(0, -6, 0), End: now}
	},
	WindowLast12Months: func(now time.Time) core.ReportWindow {
		return core.ReportWindow{Start: now.AddDate(-1, 0, 0), End: now}
	},
	WindowSince2020: func(now time.Time) core.ReportWindow {
		return core.ReportWindow{Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), End: now}
	},
}

// Resolve converts the token into a concrete window anchored at now.
// Unknown tokens resolve to the unbounded window.
func (w TimeWindow) Resolve(now time.Time) core.ReportWindow {
	if resolver, ok := windowResolvers[w]; ok {
		return resolver(now)
	}
	return core.ReportWindow{}
}

// AgeRange filters cases by patient age in years
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// QuerySpec is the structured query accepted by the router
type QuerySpec struct {
	Drugs       []string   `json:"drugs"`
	Reactions   []string   `json:"reactions"`
	SeriousOnly bool       `json:"serious_only"`
	AgeRange    *AgeRange  `json:"age_range,omitempty"`
	Regions     []string   `json:"regions,omitempty"`
	Window      TimeWindow `json:"window"`
	Limit       int        `json:"limit"`
}

// Validate checks the structural validity of the query itself
func (q QuerySpec) Validate() error {
	if len(q.Drugs) == 0 && len(q.Reactions) == 0 {
		return core.ErrEmptyQuery
	}
	if q.Limit < 0 {
		return core.NewValidationError("limit", "must be non-negative")
	}
	return nil
}

// EffectiveLimit applies the default cap when the caller did not set one
func (q QuerySpec) EffectiveLimit(defaultLimit int) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return defaultLimit
}
