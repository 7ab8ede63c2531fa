package bayes

import (
	"math"

	"drugwatch/domain/signal"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// ShrinkageModel is the pluggable empirical-Bayes estimator. The exact
// shrinkage formula is configuration, not a constant of the system: the
// gamma-Poisson fit below is the default, and the simplified approximation
// exists for parity with older IC-based pipelines.
type ShrinkageModel interface {
	Name() string
	Estimate(n11 int, expected float64) signal.BayesianResult
}

// Detector stabilizes small-count signals with an empirical-Bayes shrinkage
// estimate. Classical PRR/ROR are unstable when n11 < 5; shrinking toward the
// prior dampens single-report false positives while high-count
// disproportionality still flags.
type Detector struct {
	model         ShrinkageModel
	eb05Threshold float64
}

// Config tunes the detector
type Config struct {
	EB05Threshold float64 // lower credibility bound a pair must clear to flag
	PriorAlpha    float64 // gamma prior shape
	PriorBeta     float64 // gamma prior rate
}

// DefaultConfig returns the standard shrinkage configuration
func DefaultConfig() Config {
	return Config{
		EB05Threshold: 2.0,
		PriorAlpha:    1.0,
		PriorBeta:     1.0,
	}
}

// NewDetector creates a detector using the gamma-Poisson model
func NewDetector(cfg Config) *Detector {
	return &Detector{
		model: &GammaPoissonModel{
			PriorAlpha: cfg.PriorAlpha,
			PriorBeta:  cfg.PriorBeta,
		},
		eb05Threshold: cfg.EB05Threshold,
	}
}

// NewDetectorWithModel creates a detector with an explicit shrinkage model
func NewDetectorWithModel(model ShrinkageModel, eb05Threshold float64) *Detector {
	return &Detector{model: model, eb05Threshold: eb05Threshold}
}

// Detect computes the shrunk estimate for one table. Zero observed or zero
// expected counts produce the zero sentinel with the flag false.
func (d *Detector) Detect(table signal.ContingencyTable) signal.BayesianResult {
	expected := table.Expected()
	if table.N11 == 0 || expected == 0 {
		return signal.BayesianResult{Model: d.model.Name()}
	}

	result := d.model.Estimate(table.N11, expected)
	result.IsSignal = result.EB05 > d.eb05Threshold
	return result
}

// ============================================================================
// GAMMA-POISSON MODEL (default)
// ============================================================================

// GammaPoissonModel places a Gamma(alpha, beta) prior on the true
// reporting-rate ratio lambda, observes n11 ~ Poisson(lambda * expected), and
// reports the posterior Gamma(alpha+n11, beta+expected).
type GammaPoissonModel struct {
	PriorAlpha float64
	PriorBeta  float64
}

func (m *GammaPoissonModel) Name() string {
	return "gamma_poisson"
}

// Estimate returns the EBGM (posterior geometric mean) with 5%/95%
// credibility bounds from the posterior gamma quantiles.
func (m *GammaPoissonModel) Estimate(n11 int, expected float64) signal.BayesianResult {
	alpha := m.PriorAlpha + float64(n11)
	rate := m.PriorBeta + expected

	// Geometric mean of the posterior: exp(E[ln lambda]) = exp(digamma(alpha)) / rate
	ebgm := math.Exp(mathext.Digamma(alpha)) / rate

	posterior := distuv.Gamma{Alpha: alpha, Beta: rate}
	eb05 := posterior.Quantile(0.05)
	eb95 := posterior.Quantile(0.95)

	return signal.BayesianResult{
		EBGM:     signal.SanitizeFloat(ebgm),
		EB05:     signal.SanitizeFloat(eb05),
		EB95:     signal.SanitizeFloat(eb95),
		Expected: expected,
		Model:    m.Name(),
	}
}

// ============================================================================
// SIMPLIFIED MODEL (IC-style approximation)
// ============================================================================

// SimplifiedModel approximates the shrinkage with the observed/expected ratio
// and a normal-theory lower bound on the log scale, matching the simplified
// variance approximation used by the IC statistic. Not regulatory grade; kept
// for comparability with pipelines that predate the gamma-Poisson fit.
type SimplifiedModel struct{}

func (m *SimplifiedModel) Name() string {
	return "simplified"
}

func (m *SimplifiedModel) Estimate(n11 int, expected float64) signal.BayesianResult {
	ratio := float64(n11) / expected
	se := math.Sqrt(1 / float64(n11))
	lower := math.Exp(math.Log(ratio) - 1.645*se)
	upper := math.Exp(math.Log(ratio) + 1.645*se)

	return signal.BayesianResult{
		EBGM:     signal.SanitizeFloat(ratio),
		EB05:     signal.SanitizeFloat(lower),
		EB95:     signal.SanitizeFloat(upper),
		Expected: expected,
		Model:    m.Name(),
	}
}
