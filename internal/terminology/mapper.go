package terminology

import (
	"context"
	"strings"

	"drugwatch/domain/core"
	"drugwatch/ports"
)

// Mapper normalizes free-text reaction terms against an in-memory synonym
// dictionary. Exact canonical matches score 1.0, synonym matches carry the
// confidence recorded with the synonym. Zero-or-one match per term.
type Mapper struct {
	canonical map[string]bool
	synonyms  map[string]entry
}

type entry struct {
	canonical  core.EventKey
	confidence float64
}

// NewMapper builds a mapper over the default dictionary
func NewMapper() *Mapper {
	m := &Mapper{
		canonical: make(map[string]bool),
		synonyms:  make(map[string]entry),
	}
	for canonical, synonyms := range defaultDictionary {
		m.AddTerm(canonical, synonyms...)
	}
	return m
}

// AddTerm registers a canonical event and its synonyms. Synonyms map with a
// fixed sub-1.0 confidence so reviewers can see indirect matches.
func (m *Mapper) AddTerm(canonical string, synonyms ...string) {
	key, err := core.ParseEventKey(canonical)
	if err != nil {
		return
	}
	m.canonical[key.String()] = true
	for _, s := range synonyms {
		normalized := strings.ToLower(strings.TrimSpace(s))
		if normalized == "" {
			continue
		}
		m.synonyms[normalized] = entry{canonical: key, confidence: synonymConfidence}
	}
}

const synonymConfidence = 0.85

// Normalize implements ports.TerminologyMapper
func (m *Mapper) Normalize(_ context.Context, term string) (ports.TermMatch, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if normalized == "" {
		return ports.TermMatch{}, false, nil
	}
	if m.canonical[normalized] {
		return ports.TermMatch{Canonical: core.EventKey(normalized), Confidence: 1.0}, true, nil
	}
	if e, ok := m.synonyms[normalized]; ok {
		return ports.TermMatch{Canonical: e.canonical, Confidence: e.confidence}, true, nil
	}
	return ports.TermMatch{}, false, nil
}

// defaultDictionary covers the reaction vocabulary the bundled datasets use.
// Keyed by canonical term, values are accepted synonyms.
var defaultDictionary = map[string][]string{
	"hepatotoxicity":           {"liver injury", "liver damage", "hepatic injury", "drug-induced liver injury"},
	"stevens-johnson syndrome": {"sjs", "stevens johnson syndrome"},
	"rash":                     {"skin rash", "exanthema"},
	"anaphylaxis":              {"anaphylactic reaction", "anaphylactic shock"},
	"qt prolongation":          {"prolonged qt", "torsades de pointes"},
	"rhabdomyolysis":           {"muscle breakdown"},
	"agranulocytosis":          {"neutropenia severe"},
	"pancreatitis":             {"acute pancreatitis"},
	"nephrotoxicity":           {"renal injury", "kidney injury", "acute kidney injury"},
	"myocardial infarction":    {"heart attack", "mi"},
}
