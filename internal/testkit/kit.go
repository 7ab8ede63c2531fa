package testkit

import (
	"context"
	"math/rand"
	"time"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/ports"
)

// TestKit builds deterministic synthetic case databases for tests and demos.
// Everything is seeded; the same seed always yields the same database.
type TestKit struct {
	rng *rand.Rand
}

// NewTestKit creates a test kit with a fixed seed
func NewTestKit(seed int64) *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(seed))}
}

// PairProfile describes one synthetic drug-event association
type PairProfile struct {
	Drug            core.DrugKey
	Event           core.EventKey
	Reports         int     // co-reported cases
	SeriousFraction float64 // fraction marked serious
	MonthlyGrowth   float64 // per-month multiplier on report volume
	Sources         []string
}

// InMemoryProvider is a canned MetricsProvider for tests
type InMemoryProvider struct {
	evidence map[pairKey]signal.Evidence
	total    int
}

type pairKey struct {
	drug  core.DrugKey
	event core.EventKey
}

var _ ports.MetricsProvider = (*InMemoryProvider)(nil)

// FetchEvidence implements ports.MetricsProvider
func (p *InMemoryProvider) FetchEvidence(_ context.Context, drug core.DrugKey, event core.EventKey, _ signal.QuerySpec) (signal.Evidence, error) {
	ev, ok := p.evidence[pairKey{drug, event}]
	if !ok {
		return signal.Evidence{}, core.ErrEvidenceUnavailable
	}
	return ev, nil
}

// TotalCases implements ports.MetricsProvider
func (p *InMemoryProvider) TotalCases(_ context.Context, _ signal.QuerySpec) (int, error) {
	return p.total, nil
}

// BuildProvider synthesizes evidence for the given profiles over a shared
// database of totalCases reports ending at end.
func (k *TestKit) BuildProvider(profiles []PairProfile, totalCases int, end time.Time) *InMemoryProvider {
	provider := &InMemoryProvider{
		evidence: make(map[pairKey]signal.Evidence, len(profiles)),
		total:    totalCases,
	}
	for _, profile := range profiles {
		provider.evidence[pairKey{profile.Drug, profile.Event}] = k.buildEvidence(profile, totalCases, end)
	}
	return provider
}

const evidenceMonths = 12

func (k *TestKit) buildEvidence(p PairProfile, totalCases int, end time.Time) signal.Evidence {
	serious := int(float64(p.Reports) * p.SeriousFraction)

	// Background totals scale with the database so disproportionality
	// stays meaningful across profiles.
	drugTotal := p.Reports + totalCases/20
	eventTotal := p.Reports + totalCases/25
	n00 := totalCases - drugTotal - eventTotal + p.Reports
	if n00 < 0 {
		n00 = 0
	}
	table, err := signal.NewContingencyTable(p.Reports, drugTotal-p.Reports, eventTotal-p.Reports, n00)
	if err != nil {
		return signal.Evidence{}
	}

	series := k.buildSeries(p, end)
	evidence := signal.Evidence{
		Count:        p.Reports,
		SeriousCount: serious,
		TotalCases:   totalCases,
		Table:        &table,
		Series:       &series,
		Dates:        []time.Time{end.AddDate(0, 0, -int(k.rng.Int63n(30)))},
	}
	if series.Len() > 0 {
		evidence.FirstReportDate = series.Dates[0]
	}

	for _, name := range p.Sources {
		count := p.Reports / len(p.Sources)
		evidence.Sources = append(evidence.Sources, signal.Source{
			Name:            name,
			ReportCount:     count,
			Confidence:      0.75 + 0.2*k.rng.Float64(),
			SeriousFraction: p.SeriousFraction,
		})
	}
	return evidence
}

// buildSeries distributes the reports over monthly buckets following the
// profile's growth curve; any rounding remainder lands in the last bucket.
func (k *TestKit) buildSeries(p PairProfile, end time.Time) signal.TimeSeriesData {
	weights := make([]float64, evidenceMonths)
	weight, sum := 1.0, 0.0
	for i := range weights {
		weights[i] = weight
		sum += weight
		weight *= 1 + p.MonthlyGrowth
	}

	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(evidenceMonths - 1), 0)
	dates := make([]time.Time, evidenceMonths)
	counts := make([]int, evidenceMonths)
	assigned := 0
	for i := range weights {
		dates[i] = start.AddDate(0, i, 0)
		counts[i] = int(float64(p.Reports) * weights[i] / sum)
		assigned += counts[i]
	}
	if assigned < p.Reports {
		counts[evidenceMonths-1] += p.Reports - assigned
	}

	series, err := signal.NewTimeSeriesData(dates, counts)
	if err != nil {
		return signal.TimeSeriesData{}
	}
	return series
}

// DefaultProfiles returns a small mixed database: one strong signal, one
// emerging signal, one background pair.
func DefaultProfiles() []PairProfile {
	return []PairProfile{
		{
			Drug: "drugx", Event: "hepatotoxicity",
			Reports: 80, SeriousFraction: 0.6, MonthlyGrowth: 0.15,
			Sources: []string{"faers", "vigibase"},
		},
		{
			Drug: "drugy", Event: "qt prolongation",
			Reports: 12, SeriousFraction: 0.8, MonthlyGrowth: 0.40,
			Sources: []string{"faers"},
		},
		{
			Drug: "drugz", Event: "headache",
			Reports: 150, SeriousFraction: 0.05, MonthlyGrowth: 0.0,
			Sources: []string{"faers", "vigibase", "literature"},
		},
	}
}
