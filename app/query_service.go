package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/internal"
	"drugwatch/internal/fusion"
	"drugwatch/ports"
)

// QueryService routes a structured query to evidence and fused results:
// normalize terms, build candidate pairs, fetch evidence through the
// metrics provider, fuse, rank, truncate. The provider is the only I/O.
type QueryService struct {
	provider ports.MetricsProvider
	mapper   ports.TerminologyMapper
	engine   *fusion.Engine
	logger   *internal.Logger

	defaultLimit int
	fetchLimit   int // concurrent evidence fetches
}

// QueryResult is the ordered outcome of one routed query
type QueryResult struct {
	QueryID    core.QueryID                   `json:"query_id"`
	Results    []*signal.CompleteFusionResult `json:"results"`
	Candidates int                            `json:"candidates"` // pairs evaluated
	Skipped    int                            `json:"skipped"`    // pairs without evidence
	RuntimeMs  int64                          `json:"runtime_ms"`
}

// NewQueryService wires the router's collaborators
func NewQueryService(provider ports.MetricsProvider, mapper ports.TerminologyMapper, engine *fusion.Engine, logger *internal.Logger) *QueryService {
	return &QueryService{
		provider:     provider,
		mapper:       mapper,
		engine:       engine,
		logger:       logger,
		defaultLimit: defaultResultLimit,
		fetchLimit:   defaultFetchConcurrency,
	}
}

const (
	defaultResultLimit      = 25
	defaultFetchConcurrency = 4
	fetchTimeout            = 15 * time.Second
)

// RunQuery executes the full routing pipeline. A query that matches nothing
// returns an empty result list, not an error; only structural problems in
// the query itself reject.
func (s *QueryService) RunQuery(ctx context.Context, spec signal.QuerySpec) (*QueryResult, error) {
	start := time.Now()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	queryID := core.NewQueryID()

	events, err := s.normalizeReactions(ctx, spec.Reactions)
	if err != nil {
		return nil, err
	}
	drugs, err := parseDrugs(spec.Drugs)
	if err != nil {
		return nil, err
	}

	pairs := candidatePairs(drugs, events)
	s.logger.Debug("query %s: %d candidate pairs from %d drugs x %d events",
		queryID, len(pairs), len(drugs), len(events))

	results, skipped, err := s.evaluatePairs(ctx, pairs, spec)
	if err != nil {
		return nil, err
	}

	fusion.RankResults(results)
	if limit := spec.EffectiveLimit(s.defaultLimit); len(results) > limit {
		results = results[:limit]
	}

	return &QueryResult{
		QueryID:    queryID,
		Results:    results,
		Candidates: len(pairs),
		Skipped:    skipped,
		RuntimeMs:  time.Since(start).Milliseconds(),
	}, nil
}

// normalizeReactions maps requested terms to canonical events, dropping
// terms the mapper cannot place. Order-preserving, deduplicated.
func (s *QueryService) normalizeReactions(ctx context.Context, terms []string) ([]core.EventKey, error) {
	var events []core.EventKey
	seen := make(map[core.EventKey]bool)

	for _, term := range terms {
		match, ok, err := s.mapper.Normalize(ctx, term)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Debug("no terminology match for %q, dropping", term)
			continue
		}
		if !seen[match.Canonical] {
			seen[match.Canonical] = true
			events = append(events, match.Canonical)
		}
	}
	return events, nil
}

func parseDrugs(names []string) ([]core.DrugKey, error) {
	var drugs []core.DrugKey
	seen := make(map[core.DrugKey]bool)
	for _, name := range names {
		drug, err := core.ParseDrugKey(name)
		if err != nil {
			return nil, err
		}
		if !seen[drug] {
			seen[drug] = true
			drugs = append(drugs, drug)
		}
	}
	return drugs, nil
}

type pair struct {
	drug  core.DrugKey
	event core.EventKey
}

// candidatePairs builds the deduplicated cartesian product
func candidatePairs(drugs []core.DrugKey, events []core.EventKey) []pair {
	pairs := make([]pair, 0, len(drugs)*len(events))
	for _, d := range drugs {
		for _, e := range events {
			pairs = append(pairs, pair{drug: d, event: e})
		}
	}
	return pairs
}

// evaluatePairs fetches evidence and fuses per candidate. Pairs without
// evidence, and pairs whose fetched evidence fails validation, are skipped;
// provider failures beyond that fail the query. Only the query itself is a
// direct input here, so one pathological pair never sinks the batch.
func (s *QueryService) evaluatePairs(ctx context.Context, pairs []pair, spec signal.QuerySpec) ([]*signal.CompleteFusionResult, int, error) {
	slots := make([]*signal.CompleteFusionResult, len(pairs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fetchLimit)

	for i, p := range pairs {
		group.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, fetchTimeout)
			defer cancel()

			evidence, err := s.provider.FetchEvidence(fetchCtx, p.drug, p.event, spec)
			if err != nil {
				if core.IsEvidenceUnavailable(err) {
					s.logger.Debug("no evidence for %s/%s, skipping", p.drug, p.event)
					return nil
				}
				return err
			}
			if evidence.IsEmpty() {
				return nil
			}

			result, err := s.engine.DetectSignal(groupCtx, fusion.Candidate{
				Drug:     p.drug,
				Event:    p.event,
				Evidence: evidence,
			})
			if err != nil {
				if core.IsValidationError(err) {
					s.logger.Warn("invalid evidence for %s/%s, skipping: %v", p.drug, p.event, err)
					return nil
				}
				return err
			}
			slots[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	results := make([]*signal.CompleteFusionResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results, len(pairs) - len(results), nil
}
