package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"drugwatch/adapters/stats/bayes"
	"drugwatch/adapters/stats/causality"
	"drugwatch/adapters/stats/disprop"
	"drugwatch/adapters/stats/temporal"
	"drugwatch/domain/core"
	"drugwatch/domain/signal"
)

// Detector runs every detection method against one drug-event pair and
// aggregates agreement into a single strength label. Methods that lack
// their evidence are skipped, not failed: the contingency table is the
// only required input.
type Detector struct {
	disprop   *disprop.Analyzer
	bayes     *bayes.Detector
	causality *causality.Assessor
	temporal  *temporal.Analyzer
}

// NewDetector wires the four method adapters together
func NewDetector(d *disprop.Analyzer, b *bayes.Detector, c *causality.Assessor, t *temporal.Analyzer) *Detector {
	return &Detector{disprop: d, bayes: b, causality: c, temporal: t}
}

// NewDefaultDetector builds a detector with the standard configuration of
// every method.
func NewDefaultDetector() *Detector {
	return NewDetector(
		disprop.NewAnalyzer(disprop.ThresholdsForPreset(disprop.PresetStandard)),
		bayes.NewDetector(bayes.DefaultConfig()),
		causality.NewAssessor(),
		temporal.NewAnalyzer(temporal.DefaultConfig()),
	)
}

// Input is one drug-event pair with whatever evidence the caller has.
// Only the table is mandatory.
type Input struct {
	Drug  core.DrugKey
	Event core.EventKey

	Table    *signal.ContingencyTable
	Clinical *signal.ClinicalFeatures
	Series   *signal.TimeSeriesData

	FirstReport time.Time
	Now         time.Time
	OnsetDays   []int
}

// DetectSignal runs all applicable methods for one pair. A missing or
// structurally invalid table is a caller error and is rejected; every
// degenerate-but-valid table produces a zero-sentinel result instead.
func (d *Detector) DetectSignal(ctx context.Context, input Input) (*signal.UnifiedSignalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Table == nil {
		return nil, core.ErrMissingTable
	}
	table, err := signal.NewContingencyTable(input.Table.N11, input.Table.N10, input.Table.N01, input.Table.N00)
	if err != nil {
		return nil, err
	}

	result := &signal.UnifiedSignalResult{
		Drug:  input.Drug,
		Event: input.Event,
		Table: table,
	}

	result.Disproportionality = d.disprop.Analyze(table)

	bayesian := d.bayes.Detect(table)
	result.Bayesian = &bayesian

	if input.Clinical != nil {
		assessment := d.causality.Assess(*input.Clinical)
		result.Causality = &assessment
	}

	if input.Series != nil || !input.FirstReport.IsZero() || len(input.OnsetDays) > 0 {
		temporalInput := temporal.Input{
			FirstReport: input.FirstReport,
			Now:         input.Now,
			OnsetDays:   input.OnsetDays,
		}
		if input.Series != nil {
			temporalInput.Series = *input.Series
		}
		pattern := d.temporal.Analyze(temporalInput)
		result.Temporal = &pattern
	}

	result.MethodsFlagged = flaggedMethods(result)
	classical := classicalFlagCount(result.Disproportionality)
	result.IsSignal = classical > 0
	result.SignalStrength = signal.StrengthFromFlaggedCount(classical)

	return result, nil
}

// DetectSignalsBatch runs DetectSignal over every pair concurrently and
// returns results in input order. Any structurally invalid pair fails the
// batch, matching the single-pair contract.
func (d *Detector) DetectSignalsBatch(ctx context.Context, inputs []Input) ([]*signal.UnifiedSignalResult, error) {
	results := make([]*signal.UnifiedSignalResult, len(inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentPairs)

	for i, input := range inputs {
		group.Go(func() error {
			result, err := d.DetectSignal(groupCtx, input)
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
	return results, nil
}

const maxConcurrentPairs = 8

// flaggedMethods lists the agreeing methods in a fixed order so output is
// stable across runs.
func flaggedMethods(r *signal.UnifiedSignalResult) []string {
	flagged := []string{}
	if r.Disproportionality.PRRIsSignal {
		flagged = append(flagged, "prr")
	}
	if r.Disproportionality.RORIsSignal {
		flagged = append(flagged, "ror")
	}
	if r.Disproportionality.ICIsSignal {
		flagged = append(flagged, "ic")
	}
	if r.Bayesian != nil && r.Bayesian.IsSignal {
		flagged = append(flagged, "ebgm")
	}
	return flagged
}

// classicalFlagCount counts only the three classical statistics; strength
// and is_signal are defined on those, with the shrinkage estimate reported
// alongside for explainability.
func classicalFlagCount(d signal.DisproportionalityResult) int {
	count := 0
	if d.PRRIsSignal {
		count++
	}
	if d.RORIsSignal {
		count++
	}
	if d.ICIsSignal {
		count++
	}
	return count
}
