package fusion

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	statsengine "drugwatch/adapters/stats/engine"
	"drugwatch/domain/core"
	"drugwatch/domain/signal"
)

// Engine layers the quantum-inspired scores on top of the unified detector
// and produces the final ranking number. A constructed instance owned by the
// caller; configuration is read-only after construction.
type Engine struct {
	config   Config
	detector *statsengine.Detector
	now      func() time.Time
}

// NewEngine builds a fusion engine around the given unified detector
func NewEngine(config Config, detector *statsengine.Detector) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if detector == nil {
		detector = statsengine.NewDefaultDetector()
	}
	return &Engine{config: config, detector: detector, now: time.Now}, nil
}

// WithClock fixes the engine's clock; used by tests for deterministic recency
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Candidate is one drug-event pair with its fetched evidence
type Candidate struct {
	Drug     core.DrugKey
	Event    core.EventKey
	Evidence signal.Evidence
}

// DetectSignal fuses every available evidence layer for one pair. Structural
// problems in the evidence reject; degenerate data degrades to zero scores.
func (e *Engine) DetectSignal(ctx context.Context, c Candidate) (*signal.CompleteFusionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Evidence.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	result := &signal.CompleteFusionResult{
		Drug:        c.Drug,
		Event:       c.Event,
		Fingerprint: evidenceFingerprint(c),
		EvaluatedAt: core.NewTimestamp(now),
	}

	if c.Evidence.Table != nil {
		unified, err := e.detector.DetectSignal(ctx, unifiedInput(c, now))
		if err != nil {
			return nil, err
		}
		result.Unified = unified
	}

	result.ClassicalScore = e.classicalScore(result.Unified)
	result.QuantumScoreLayer1 = e.scoreLayer1(c.Evidence, now, result.ClassicalScore, &result.Components)

	if len(c.Evidence.Sources) > 0 {
		layer2 := e.scoreLayer2(c, result.Unified, &result.Components)
		result.QuantumScoreLayer2 = &layer2
	}

	result.FusionScore = e.fuse(result)
	result.AlertLevel = e.config.alertFor(result.FusionScore)
	result.Explanation = explain(result)

	signal.SanitizeResult(result)
	return result, nil
}

// DetectSignalsBatch scores each candidate independently, then runs the
// global ranking pass: sort by fusion score descending, assign 1-based
// quantum and classical ranks and the percentile.
func (e *Engine) DetectSignalsBatch(ctx context.Context, candidates []Candidate) ([]*signal.CompleteFusionResult, error) {
	results := make([]*signal.CompleteFusionResult, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentCandidates)
	for i, c := range candidates {
		group.Go(func() error {
			result, err := e.DetectSignal(groupCtx, c)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	RankResults(results)
	return results, nil
}

const maxConcurrentCandidates = 8

// RankResults sorts in place by fusion score descending and fills the rank
// fields. Inherently sequential; runs after all per-pair scores exist.
func RankResults(results []*signal.CompleteFusionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FusionScore > results[j].FusionScore
	})

	byClassical := make([]*signal.CompleteFusionResult, len(results))
	copy(byClassical, results)
	sort.SliceStable(byClassical, func(i, j int) bool {
		return byClassical[i].ClassicalScore > byClassical[j].ClassicalScore
	})
	for rank, r := range byClassical {
		r.ClassicalRank = rank + 1
	}

	n := float64(len(results))
	for i, r := range results {
		r.QuantumRank = i + 1
		r.Percentile = float64(i+1) / n
	}
}

// evidenceFingerprint identifies the evaluation inputs so identical
// evidence can be recognized downstream (caching, audit trails).
func evidenceFingerprint(c Candidate) core.Hash {
	inputs := map[string]interface{}{
		"count":       c.Evidence.Count,
		"serious":     c.Evidence.SeriousCount,
		"total_cases": c.Evidence.TotalCases,
	}
	if c.Evidence.Table != nil {
		inputs["table"] = *c.Evidence.Table
	}
	if !c.Evidence.FirstReportDate.IsZero() {
		inputs["first_report"] = c.Evidence.FirstReportDate.Unix()
	}
	return core.ComputePairFingerprint(c.Drug, c.Event, inputs)
}

func unifiedInput(c Candidate, now time.Time) statsengine.Input {
	input := statsengine.Input{
		Drug:        c.Drug,
		Event:       c.Event,
		Table:       c.Evidence.Table,
		Clinical:    c.Evidence.Clinical,
		Series:      c.Evidence.Series,
		FirstReport: c.Evidence.FirstReportDate,
		Now:         now,
	}
	if c.Evidence.Clinical != nil && c.Evidence.Clinical.TimeToOnsetDays != nil {
		input.OnsetDays = []int{*c.Evidence.Clinical.TimeToOnsetDays}
	}
	return input
}

// classicalScore collapses the unified result into [0,1]. Sub-scores that
// lacked their evidence drop out of the blend instead of dragging it down.
func (e *Engine) classicalScore(u *signal.UnifiedSignalResult) float64 {
	if u == nil {
		return 0
	}
	cfg := e.config

	score := cfg.ClassicalDisproWeight * disproScore(u.Disproportionality)
	weight := cfg.ClassicalDisproWeight

	if u.Bayesian != nil {
		score += cfg.ClassicalBayesWeight * signal.ClampUnit(math.Log2(u.Bayesian.EBGM+1)/3)
		weight += cfg.ClassicalBayesWeight
	}
	if u.Causality != nil {
		score += cfg.ClassicalCausalWeight * u.Causality.Probability
		weight += cfg.ClassicalCausalWeight
	}
	if u.Temporal != nil {
		score += cfg.ClassicalTemporalWeight * temporalScore(u.Temporal)
		weight += cfg.ClassicalTemporalWeight
	}

	if weight == 0 {
		return 0
	}
	return signal.ClampUnit(score / weight)
}

// disproScore blends method agreement with effect magnitude
func disproScore(d signal.DisproportionalityResult) float64 {
	flagged := 0.0
	for _, hit := range []bool{d.PRRIsSignal, d.RORIsSignal, d.ICIsSignal} {
		if hit {
			flagged++
		}
	}
	magnitude := 0.0
	if d.PRR > 0 {
		magnitude = signal.ClampUnit(math.Log2(d.PRR+1) / 3)
	}
	return signal.ClampUnit(0.7*(flagged/3) + 0.3*magnitude)
}

func temporalScore(t *signal.TemporalResult) float64 {
	trend := 0.0
	if t.Trend == signal.TrendIncreasing {
		trend = 1.0
	}
	burst := 0.0
	if t.BurstDetected {
		burst = signal.ClampUnit(t.BurstScore / 4)
	}
	return signal.ClampUnit(0.3*trend + 0.4*burst + 0.3*t.NoveltyScore)
}

// scoreLayer1 computes the single-source quantum score: base factors,
// interactions, and the tunneling bonus. Every term lands in components.
func (e *Engine) scoreLayer1(ev signal.Evidence, now time.Time, classical float64, comps *signal.FusionComponents) float64 {
	cfg := e.config

	rarity := rarityScore(ev.Count, ev.TotalCases)
	seriousness := ev.Seriousness()
	recency := e.recencyScore(ev.MostRecentDate(), now)

	comps.Rarity = rarity
	comps.Seriousness = seriousness
	comps.Recency = recency

	comps.RareSerious = cfg.RareSeriousWeight * rarity * seriousness
	comps.RareRecent = cfg.RareRecentWeight * rarity * recency
	comps.SeriousRecent = cfg.SeriousRecentWeight * seriousness * recency
	comps.AllThree = cfg.AllThreeWeight * rarity * seriousness * recency

	score := cfg.RarityWeight*rarity +
		cfg.SeriousnessWeight*seriousness +
		cfg.RecencyWeight*recency +
		comps.RareSerious + comps.RareRecent + comps.SeriousRecent + comps.AllThree

	comps.Tunneling = e.tunnelingBonus(classical, rarity, seriousness, recency)
	score += comps.Tunneling

	return signal.ClampUnit(score)
}

// tunnelingBonus fires only in the near-miss band below the classical
// cutoff, and only when enough base factors are simultaneously elevated.
func (e *Engine) tunnelingBonus(classical, rarity, seriousness, recency float64) float64 {
	cfg := e.config
	if classical >= cfg.ClassicalCutoff || classical < cfg.ClassicalCutoff-cfg.TunnelingNearMissBand {
		return 0
	}
	elevated := 0
	for _, factor := range []float64{rarity, seriousness, recency} {
		if factor >= cfg.TunnelingFactorFloor {
			elevated++
		}
	}
	if elevated < cfg.TunnelingMinFactors {
		return 0
	}
	return cfg.TunnelingBonus
}

// rarityScore is higher for pairs reported rarely relative to the database
// size; log scale so the first few reports matter most.
func rarityScore(count, totalCases int) float64 {
	if count <= 0 || totalCases <= 0 {
		return 0
	}
	return signal.ClampUnit(1 - math.Log10(float64(count)+1)/math.Log10(float64(totalCases)+1))
}

// recencyScore halves every RecencyHalfLifeDays since the latest report
func (e *Engine) recencyScore(latest time.Time, now time.Time) float64 {
	if latest.IsZero() {
		return 0
	}
	days := now.Sub(latest).Hours() / 24
	if days < 0 {
		days = 0
	}
	return signal.ClampUnit(math.Exp2(-days / e.config.RecencyHalfLifeDays))
}

// scoreLayer2 computes the multi-source quantum score. Only called when at
// least one provenance source exists.
func (e *Engine) scoreLayer2(c Candidate, u *signal.UnifiedSignalResult, comps *signal.FusionComponents) float64 {
	cfg := e.config
	ev := c.Evidence

	frequency := signal.ClampUnit(math.Log10(float64(ev.Count)+1) / 4)
	severity := ev.Seriousness()
	if fraction, ok := meanSeriousFraction(ev.Sources); ok {
		severity = signal.ClampUnit((severity + fraction) / 2)
	}

	burst, novelty := 0.0, 0.0
	if u != nil && u.Temporal != nil {
		if u.Temporal.BurstDetected {
			burst = signal.ClampUnit(u.Temporal.BurstScore / 4)
		}
		novelty = u.Temporal.NoveltyScore
	}

	consensus := e.consensusScore(ev.Sources)
	mechanism := e.mechanismScore(c.Event, ev.LabelReactions)

	comps.Frequency = &frequency
	comps.Severity = &severity
	comps.Burst = &burst
	comps.Novelty = &novelty
	comps.Consensus = &consensus
	comps.Mechanism = &mechanism

	total := cfg.FrequencyWeight + cfg.SeverityWeight + cfg.BurstWeight +
		cfg.NoveltyWeight + cfg.ConsensusWeight + cfg.MechanismWeight
	if total == 0 {
		return 0
	}
	score := cfg.FrequencyWeight*frequency + cfg.SeverityWeight*severity +
		cfg.BurstWeight*burst + cfg.NoveltyWeight*novelty +
		cfg.ConsensusWeight*consensus + cfg.MechanismWeight*mechanism
	return signal.ClampUnit(score / total)
}

func meanSeriousFraction(sources []signal.Source) (float64, bool) {
	if len(sources) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, s := range sources {
		sum += s.SeriousFraction
	}
	return sum / float64(len(sources)), true
}

// consensusScore is the fraction of reporting sources that are both
// high-confidence and actually contributed reports.
func (e *Engine) consensusScore(sources []signal.Source) float64 {
	if len(sources) == 0 {
		return 0
	}
	agreeing := 0
	for _, s := range sources {
		if s.Confidence >= e.config.ConsensusConfidenceFloor && s.ReportCount > 0 {
			agreeing++
		}
	}
	return float64(agreeing) / float64(len(sources))
}

// mechanismScore reflects biological plausibility from product labeling: a
// reaction already on the label is plausible, an unlabeled one is uncertain,
// and no label information stays neutral.
func (e *Engine) mechanismScore(event core.EventKey, labelReactions []string) float64 {
	if len(labelReactions) == 0 {
		return e.config.MechanismUnknown
	}
	for _, labeled := range labelReactions {
		if parsed, err := core.ParseEventKey(labeled); err == nil && parsed == event {
			return e.config.MechanismLabeled
		}
	}
	return e.config.MechanismUnlabeled
}

// fuse blends the layer scores with weights renormalized over the layers
// present.
func (e *Engine) fuse(r *signal.CompleteFusionResult) float64 {
	cfg := e.config

	score := cfg.ClassicalWeight*r.ClassicalScore + cfg.Layer1Weight*r.QuantumScoreLayer1
	weight := cfg.ClassicalWeight + cfg.Layer1Weight
	if r.QuantumScoreLayer2 != nil {
		score += cfg.Layer2Weight * *r.QuantumScoreLayer2
		weight += cfg.Layer2Weight
	}
	if weight == 0 {
		return 0
	}
	return signal.ClampUnit(score / weight)
}
