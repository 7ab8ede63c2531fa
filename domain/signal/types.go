package signal

import (
	"time"

	"drugwatch/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// ContingencyTable is the 2x2 count structure underlying the classical
// disproportionality statistics.
//
// INVARIANTS:
// - All cells non-negative
// - Total() > 0 for any statistic to be defined
// - Immutable once constructed; derived totals are computed, never stored
type ContingencyTable struct {
	N11 int `json:"n11"` // drug + event
	N10 int `json:"n10"` // drug, no event
	N01 int `json:"n01"` // event, no drug
	N00 int `json:"n00"` // neither
}

// NewContingencyTable validates cell counts and constructs the table
func NewContingencyTable(n11, n10, n01, n00 int) (ContingencyTable, error) {
	cells := []struct {
		name  string
		value int
	}{
		{"n11", n11}, {"n10", n10}, {"n01", n01}, {"n00", n00},
	}
	for _, c := range cells {
		if c.value < 0 {
			return ContingencyTable{}, core.NewNegativeCountError(c.name, c.value)
		}
	}
	if n11+n10+n01+n00 == 0 {
		return ContingencyTable{}, core.ErrEmptyTable
	}
	return ContingencyTable{N11: n11, N10: n10, N01: n01, N00: n00}, nil
}

// Total returns the grand total of all four cells
func (t ContingencyTable) Total() int {
	return t.N11 + t.N10 + t.N01 + t.N00
}

// DrugTotal returns the number of reports mentioning the drug
func (t ContingencyTable) DrugTotal() int {
	return t.N11 + t.N10
}

// EventTotal returns the number of reports mentioning the event
func (t ContingencyTable) EventTotal() int {
	return t.N11 + t.N01
}

// Expected returns the expected drug+event count under independence
func (t ContingencyTable) Expected() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.DrugTotal()) * float64(t.EventTotal()) / float64(total)
}

// DisproportionalityResult holds the three classical statistics for one pair.
// Produced fresh per call and never mutated after construction.
type DisproportionalityResult struct {
	PRR         float64 `json:"prr"`
	PRRCILower  float64 `json:"prr_ci_lower"`
	PRRCIUpper  float64 `json:"prr_ci_upper"`
	PRRIsSignal bool    `json:"prr_is_signal"`

	ROR         float64 `json:"ror"`
	RORCILower  float64 `json:"ror_ci_lower"`
	RORCIUpper  float64 `json:"ror_ci_upper"`
	RORIsSignal bool    `json:"ror_is_signal"`

	IC         float64 `json:"ic"`
	IC025      float64 `json:"ic025"`
	ICIsSignal bool    `json:"ic_is_signal"`
}

// BayesianResult holds the empirical-Bayes shrinkage estimate for one pair
type BayesianResult struct {
	EBGM     float64 `json:"ebgm"`      // shrunk observed/expected ratio
	EB05     float64 `json:"eb05"`      // lower 5% credibility bound
	EB95     float64 `json:"eb95"`      // upper 95% credibility bound
	Expected float64 `json:"expected"`  // expected count under independence
	IsSignal bool    `json:"is_signal"` // EB05 above the configured threshold
	Model    string  `json:"model"`     // shrinkage model that produced the estimate
}

// ClinicalFeatures carries optional patient-level causality evidence.
// Pointer fields distinguish "not assessed" from an explicit negative.
type ClinicalFeatures struct {
	TimeToOnsetDays     *int     `json:"time_to_onset_days,omitempty"`
	DechallengeImproved bool     `json:"dechallenge_improved"`
	RechallengeRecurred *bool    `json:"rechallenge_recurred,omitempty"`
	AlternativeCauses   []string `json:"alternative_causes,omitempty"`
	DoseResponse        bool     `json:"dose_response"`
	KnownReaction       bool     `json:"known_reaction"`
	LabEvidence         bool     `json:"lab_evidence"`
}

// TimeSeriesData carries bucketed report counts over time.
//
// INVARIANT: len(Dates) == len(Counts), dates ascending and unique per bucket.
type TimeSeriesData struct {
	Dates  []time.Time `json:"dates"`
	Counts []int       `json:"counts"`
}

// NewTimeSeriesData validates and constructs a report-count series
func NewTimeSeriesData(dates []time.Time, counts []int) (TimeSeriesData, error) {
	if len(dates) != len(counts) {
		return TimeSeriesData{}, core.NewSeriesMismatchError(len(dates), len(counts))
	}
	for i, c := range counts {
		if c < 0 {
			return TimeSeriesData{}, core.NewNegativeCountError("counts", c)
		}
		if i > 0 && dates[i].Before(dates[i-1]) {
			return TimeSeriesData{}, core.ErrSeriesUnordered
		}
	}
	return TimeSeriesData{Dates: dates, Counts: counts}, nil
}

// Len returns the number of buckets in the series
func (ts TimeSeriesData) Len() int {
	return len(ts.Counts)
}

// ============================================================================
// SIGNAL STRENGTH
// ============================================================================

// SignalStrength is the ordered aggregate strength of a detected signal,
// derived from how many independent methods agree. Never set directly.
type SignalStrength int

const (
	StrengthNone SignalStrength = iota
	StrengthWeak
	StrengthModerate
	StrengthStrong
	StrengthVeryStrong
)

var strengthNames = map[SignalStrength]string{
	StrengthNone:       "none",
	StrengthWeak:       "weak",
	StrengthModerate:   "moderate",
	StrengthStrong:     "strong",
	StrengthVeryStrong: "very_strong",
}

func (s SignalStrength) String() string {
	if name, ok := strengthNames[s]; ok {
		return name
	}
	return "none"
}

// MarshalJSON renders the strength as its lowercase name
func (s SignalStrength) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// StrengthFromFlaggedCount maps the number of classical methods that flagged
// (PRR, ROR, IC) to the aggregate strength.
func StrengthFromFlaggedCount(flagged int) SignalStrength {
	switch {
	case flagged >= 3:
		return StrengthStrong
	case flagged == 2:
		return StrengthModerate
	case flagged == 1:
		return StrengthWeak
	default:
		return StrengthNone
	}
}
