package temporal

import (
	"math"
	"time"

	"drugwatch/domain/signal"

	"github.com/montanaflynn/stats"
)

// Analyzer detects temporal reporting patterns in a bucketed count series:
// trend direction, bursts, novelty and time-to-onset latency. The four
// sub-scores are independent; the caller decides which to weight.
type Analyzer struct {
	config Config
}

// Config tunes the pattern detectors
type Config struct {
	TrendWindow        int     // buckets per comparison window
	TrendThreshold     float64 // relative change needed to leave "stable"
	BurstZThreshold    float64 // z-score a bucket must exceed over its baseline
	BaselineWindow     int     // rolling baseline length in buckets
	NoveltyHorizonDays float64 // age at which novelty has decayed to ~1/e
}

// DefaultConfig returns the standard detector configuration
func DefaultConfig() Config {
	return Config{
		TrendWindow:        3,
		TrendThreshold:     0.30,
		BurstZThreshold:    2.0,
		BaselineWindow:     6,
		NoveltyHorizonDays: 365,
	}
}

// NewAnalyzer creates a temporal analyzer
func NewAnalyzer(config Config) *Analyzer {
	if config.TrendWindow <= 0 {
		config.TrendWindow = DefaultConfig().TrendWindow
	}
	if config.BaselineWindow <= 0 {
		config.BaselineWindow = DefaultConfig().BaselineWindow
	}
	if config.NoveltyHorizonDays <= 0 {
		config.NoveltyHorizonDays = DefaultConfig().NoveltyHorizonDays
	}
	return &Analyzer{config: config}
}

// Input carries the optional evidence the analyzer can work with
type Input struct {
	Series      signal.TimeSeriesData
	FirstReport time.Time
	Now         time.Time
	OnsetDays   []int // per-case time-to-onset, when available
}

// Analyze runs all four detectors and returns the combined result
func (a *Analyzer) Analyze(input Input) signal.TemporalResult {
	result := signal.TemporalResult{
		Trend: signal.TrendStable,
	}

	a.analyzeTrend(input.Series, &result)
	a.analyzeBursts(input.Series, &result)
	result.NoveltyScore = a.noveltyScore(input.FirstReport, input.Now)
	result.Latency = latencyStats(input.OnsetDays)

	return result
}

// analyzeTrend compares the mean of the most recent window against an
// equally sized older window and labels the relative change.
func (a *Analyzer) analyzeTrend(series signal.TimeSeriesData, result *signal.TemporalResult) {
	w := a.config.TrendWindow
	n := series.Len()
	if n < 2*w {
		return // not enough buckets to compare, stays stable
	}

	recent := toFloats(series.Counts[n-w:])
	prior := toFloats(series.Counts[n-2*w : n-w])

	recentMean, _ := stats.Mean(recent)
	priorMean, _ := stats.Mean(prior)

	var change float64
	switch {
	case priorMean > 0:
		change = (recentMean - priorMean) / priorMean
	case recentMean > 0:
		change = 1.0 // from nothing to something
	}

	result.TrendChange = signal.SanitizeFloat(change)
	switch {
	case change > a.config.TrendThreshold:
		result.Trend = signal.TrendIncreasing
	case change < -a.config.TrendThreshold:
		result.Trend = signal.TrendDecreasing
	default:
		result.Trend = signal.TrendStable
	}
}

// analyzeBursts flags local maxima whose z-score over the rolling baseline
// exceeds the configured threshold.
func (a *Analyzer) analyzeBursts(series signal.TimeSeriesData, result *signal.TemporalResult) {
	n := series.Len()
	base := a.config.BaselineWindow
	if n <= base {
		return
	}

	var peakScore float64
	var peaks []int

	for i := base; i < n; i++ {
		window := toFloats(series.Counts[i-base : i])
		mean, _ := stats.Mean(window)
		sd, _ := stats.StandardDeviation(window)
		if sd == 0 {
			sd = 1 // flat baseline, any jump counts in raw units
		}

		z := (float64(series.Counts[i]) - mean) / sd
		if z > peakScore {
			peakScore = z
		}

		if z < a.config.BurstZThreshold {
			continue
		}
		// Local maximum check against immediate neighbors
		if i > 0 && series.Counts[i] < series.Counts[i-1] {
			continue
		}
		if i < n-1 && series.Counts[i] < series.Counts[i+1] {
			continue
		}
		peaks = append(peaks, i)
	}

	result.BurstScore = signal.SanitizeFloat(peakScore)
	result.BurstDetected = len(peaks) > 0
	result.BurstBuckets = peaks
}

// noveltyScore decays with the age of the first-ever report: a pair first
// seen yesterday scores near 1, one known for years near 0.
func (a *Analyzer) noveltyScore(first time.Time, now time.Time) float64 {
	if first.IsZero() {
		return 0
	}
	if now.IsZero() {
		now = time.Now()
	}
	ageDays := now.Sub(first).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return signal.ClampUnit(math.Exp(-ageDays / a.config.NoveltyHorizonDays))
}

// latencyStats summarizes per-case time-to-onset when supplied
func latencyStats(onsetDays []int) *signal.LatencyStats {
	if len(onsetDays) == 0 {
		return nil
	}

	data := make([]float64, len(onsetDays))
	for i, d := range onsetDays {
		data[i] = float64(d)
	}

	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	q75, _ := stats.Percentile(data, 75)
	q25, _ := stats.Percentile(data, 25)

	return &signal.LatencyStats{
		MeanDays:   signal.SanitizeFloat(mean),
		MedianDays: signal.SanitizeFloat(median),
		IQRDays:    signal.SanitizeFloat(q75 - q25),
		Cases:      len(onsetDays),
	}
}

func toFloats(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}
