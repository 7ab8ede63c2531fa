package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/internal"
	"drugwatch/internal/fusion"
	"drugwatch/ports"
)

// fakeProvider serves canned evidence keyed by "drug|event"
type fakeProvider struct {
	evidence map[string]signal.Evidence
	fetches  int
}

func (p *fakeProvider) FetchEvidence(_ context.Context, drug core.DrugKey, event core.EventKey, _ signal.QuerySpec) (signal.Evidence, error) {
	p.fetches++
	ev, ok := p.evidence[drug.String()+"|"+event.String()]
	if !ok {
		return signal.Evidence{}, core.ErrEvidenceUnavailable
	}
	return ev, nil
}

func (p *fakeProvider) TotalCases(_ context.Context, _ signal.QuerySpec) (int, error) {
	return 10000, nil
}

// fakeMapper lowercases known terms and rejects the rest
type fakeMapper struct {
	known map[string]string
}

func (m *fakeMapper) Normalize(_ context.Context, term string) (ports.TermMatch, bool, error) {
	canonical, ok := m.known[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return ports.TermMatch{}, false, nil
	}
	return ports.TermMatch{Canonical: core.EventKey(canonical), Confidence: 0.95}, true, nil
}

func evidenceFor(t *testing.T, n11 int) signal.Evidence {
	t.Helper()
	table, err := signal.NewContingencyTable(n11, 1000-n11, 200, 8800)
	require.NoError(t, err)
	return signal.Evidence{
		Count:        n11,
		SeriousCount: n11 / 2,
		TotalCases:   10000,
		Table:        &table,
	}
}

func newTestService(t *testing.T, provider ports.MetricsProvider, mapper ports.TerminologyMapper) *QueryService {
	t.Helper()
	engine, err := fusion.NewEngine(fusion.DefaultConfig(), nil)
	require.NoError(t, err)
	return NewQueryService(provider, mapper, engine, internal.NewLogger(internal.LogLevelError))
}

func TestRunQuery_RanksAndTruncates(t *testing.T) {
	provider := &fakeProvider{evidence: map[string]signal.Evidence{
		"drugx|hepatotoxicity": evidenceFor(t, 80),
		"drugx|rash":           evidenceFor(t, 5),
		"drugy|rash":           evidenceFor(t, 40),
	}}
	mapper := &fakeMapper{known: map[string]string{
		"liver damage": "hepatotoxicity",
		"rash":         "rash",
	}}
	service := newTestService(t, provider, mapper)

	result, err := service.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"DrugX", "drugy"},
		Reactions: []string{"Liver Damage", "rash", "made-up term"},
		Limit:     2,
	})
	require.NoError(t, err)

	// 2 drugs x 2 mapped events = 4 candidates; drugy|hepatotoxicity skips
	assert.Equal(t, 4, result.Candidates)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Results, 2, "limit should truncate the third hit")

	assert.Equal(t, core.DrugKey("drugx"), result.Results[0].Drug)
	assert.Equal(t, core.EventKey("hepatotoxicity"), result.Results[0].Event)
	assert.GreaterOrEqual(t, result.Results[0].FusionScore, result.Results[1].FusionScore)
	assert.Equal(t, 1, result.Results[0].QuantumRank)
	assert.False(t, result.QueryID.String() == "")
}

func TestRunQuery_EmptyQueryRejected(t *testing.T) {
	service := newTestService(t, &fakeProvider{}, &fakeMapper{})

	_, err := service.RunQuery(context.Background(), signal.QuerySpec{})
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestRunQuery_NothingMatchedIsEmptyNotError(t *testing.T) {
	provider := &fakeProvider{evidence: map[string]signal.Evidence{}}
	mapper := &fakeMapper{known: map[string]string{"rash": "rash"}}
	service := newTestService(t, provider, mapper)

	result, err := service.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"drugz"},
		Reactions: []string{"rash"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunQuery_DedupesCandidates(t *testing.T) {
	provider := &fakeProvider{evidence: map[string]signal.Evidence{
		"drugx|rash": evidenceFor(t, 10),
	}}
	mapper := &fakeMapper{known: map[string]string{
		"rash":      "rash",
		"skin rash": "rash", // synonym collapses to the same canonical event
	}}
	service := newTestService(t, provider, mapper)

	result, err := service.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"drugx", "DRUGX"},
		Reactions: []string{"rash", "skin rash"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, provider.fetches)
	require.Len(t, result.Results, 1)
}

func TestRunQuery_PathologicalEvidenceSkipped(t *testing.T) {
	provider := &fakeProvider{evidence: map[string]signal.Evidence{
		"drugx|rash": evidenceFor(t, 40),
		"drugy|rash": {Count: 5, TotalCases: 0}, // provider bug: no denominator
	}}
	mapper := &fakeMapper{known: map[string]string{"rash": "rash"}}
	service := newTestService(t, provider, mapper)

	result, err := service.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"drugx", "drugy"},
		Reactions: []string{"rash"},
	})
	require.NoError(t, err, "one bad candidate must not fail the query")

	require.Len(t, result.Results, 1)
	assert.Equal(t, core.DrugKey("drugx"), result.Results[0].Drug)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunQuery_InvalidDrugRejected(t *testing.T) {
	mapper := &fakeMapper{known: map[string]string{"rash": "rash"}}
	service := newTestService(t, &fakeProvider{}, mapper)

	_, err := service.RunQuery(context.Background(), signal.QuerySpec{
		Drugs:     []string{"   "},
		Reactions: []string{"rash"},
	})
	assert.Error(t, err)
}
