package signal

import "math"

// SanitizedSentinel replaces non-finite intermediate results before any value
// reaches serialized output; JSON consumers cannot represent NaN/Infinity.
const SanitizedSentinel = -999.0

// SanitizeFloat maps NaN and +-Inf to the out-of-range sentinel
func SanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return SanitizedSentinel
	}
	return v
}

// ClampUnit sanitizes v and clips it to [0, 1]
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SanitizeResult scrubs every float field of a fusion result in place so no
// non-finite value escapes to a consumer.
func SanitizeResult(r *CompleteFusionResult) {
	r.ClassicalScore = SanitizeFloat(r.ClassicalScore)
	r.QuantumScoreLayer1 = SanitizeFloat(r.QuantumScoreLayer1)
	if r.QuantumScoreLayer2 != nil {
		v := SanitizeFloat(*r.QuantumScoreLayer2)
		r.QuantumScoreLayer2 = &v
	}
	r.FusionScore = SanitizeFloat(r.FusionScore)
	r.Percentile = SanitizeFloat(r.Percentile)

	c := &r.Components
	c.Rarity = SanitizeFloat(c.Rarity)
	c.Seriousness = SanitizeFloat(c.Seriousness)
	c.Recency = SanitizeFloat(c.Recency)
	c.RareSerious = SanitizeFloat(c.RareSerious)
	c.RareRecent = SanitizeFloat(c.RareRecent)
	c.SeriousRecent = SanitizeFloat(c.SeriousRecent)
	c.AllThree = SanitizeFloat(c.AllThree)
	c.Tunneling = SanitizeFloat(c.Tunneling)
	for _, p := range []*float64{c.Frequency, c.Severity, c.Burst, c.Novelty, c.Consensus, c.Mechanism} {
		if p != nil {
			*p = SanitizeFloat(*p)
		}
	}

	if r.Unified != nil {
		d := &r.Unified.Disproportionality
		d.PRR = SanitizeFloat(d.PRR)
		d.PRRCILower = SanitizeFloat(d.PRRCILower)
		d.PRRCIUpper = SanitizeFloat(d.PRRCIUpper)
		d.ROR = SanitizeFloat(d.ROR)
		d.RORCILower = SanitizeFloat(d.RORCILower)
		d.RORCIUpper = SanitizeFloat(d.RORCIUpper)
		d.IC = SanitizeFloat(d.IC)
		d.IC025 = SanitizeFloat(d.IC025)
		if b := r.Unified.Bayesian; b != nil {
			b.EBGM = SanitizeFloat(b.EBGM)
			b.EB05 = SanitizeFloat(b.EB05)
			b.EB95 = SanitizeFloat(b.EB95)
			b.Expected = SanitizeFloat(b.Expected)
		}
	}
}
