package disprop

import (
	"math"

	"drugwatch/domain/signal"

	"gonum.org/v1/gonum/stat/distuv"
)

// Analyzer computes the three classical disproportionality statistics
// (PRR, ROR, IC) with confidence intervals from a 2x2 contingency table.
//
// Any zero denominator leaves the corresponding statistic at its zero
// sentinel with the signal flag false; a pair with no comparator data simply
// cannot show disproportionality, so the analyzer never returns an error.
type Analyzer struct {
	thresholds Thresholds
	z          float64 // normal quantile for the configured confidence level
}

// NewAnalyzer creates an analyzer with the given threshold preset
func NewAnalyzer(thresholds Thresholds) *Analyzer {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	alpha := 1 - thresholds.ConfidenceLevel
	return &Analyzer{
		thresholds: thresholds,
		z:          normal.Quantile(1 - alpha/2),
	}
}

// Thresholds returns the active threshold configuration
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze computes PRR, ROR and IC for one contingency table
func (a *Analyzer) Analyze(table signal.ContingencyTable) signal.DisproportionalityResult {
	result := signal.DisproportionalityResult{}

	a.computePRR(table, &result)
	a.computeROR(table, &result)
	a.computeIC(table, &result)

	return result
}

// computePRR fills the PRR triad: (n11/drugTotal) / (n01/comparatorTotal)
func (a *Analyzer) computePRR(t signal.ContingencyTable, r *signal.DisproportionalityResult) {
	drugTotal := t.N11 + t.N10
	comparatorTotal := t.N01 + t.N00

	if t.N11 == 0 || drugTotal == 0 || t.N01 == 0 || comparatorTotal == 0 {
		return // undefined ratio, zero sentinel stands
	}

	drugRate := float64(t.N11) / float64(drugTotal)
	backgroundRate := float64(t.N01) / float64(comparatorTotal)
	prr := drugRate / backgroundRate

	se := math.Sqrt(1/float64(t.N11) - 1/float64(drugTotal) + 1/float64(t.N01) - 1/float64(comparatorTotal))
	lower := math.Exp(math.Log(prr) - a.z*se)
	upper := math.Exp(math.Log(prr) + a.z*se)

	r.PRR = signal.SanitizeFloat(prr)
	r.PRRCILower = signal.SanitizeFloat(lower)
	r.PRRCIUpper = signal.SanitizeFloat(upper)
	r.PRRIsSignal = prr >= a.thresholds.PRRMin &&
		t.N11 >= a.thresholds.MinCases &&
		lower > a.thresholds.CILowerMin
}

// computeROR fills the ROR triad: cross-product ratio with log-normal CI
func (a *Analyzer) computeROR(t signal.ContingencyTable, r *signal.DisproportionalityResult) {
	if t.N11 == 0 || t.N10 == 0 || t.N01 == 0 || t.N00 == 0 {
		return
	}

	ror := (float64(t.N11) * float64(t.N00)) / (float64(t.N10) * float64(t.N01))
	se := math.Sqrt(1/float64(t.N11) + 1/float64(t.N10) + 1/float64(t.N01) + 1/float64(t.N00))
	lower := math.Exp(math.Log(ror) - a.z*se)
	upper := math.Exp(math.Log(ror) + a.z*se)

	r.ROR = signal.SanitizeFloat(ror)
	r.RORCILower = signal.SanitizeFloat(lower)
	r.RORCIUpper = signal.SanitizeFloat(upper)
	r.RORIsSignal = ror > a.thresholds.RORMin &&
		t.N11 >= a.thresholds.MinCases &&
		lower > a.thresholds.CILowerMin
}

// computeIC fills the information component: log2(observed/expected) with a
// simplified lower credibility bound IC - z*sqrt(1/n11).
func (a *Analyzer) computeIC(t signal.ContingencyTable, r *signal.DisproportionalityResult) {
	expected := t.Expected()
	if t.N11 == 0 || expected == 0 {
		return
	}

	ic := math.Log2(float64(t.N11) / expected)
	ic025 := ic - a.z*math.Sqrt(1/float64(t.N11))

	r.IC = signal.SanitizeFloat(ic)
	r.IC025 = signal.SanitizeFloat(ic025)
	r.ICIsSignal = ic025 > a.thresholds.IC025Min
}
