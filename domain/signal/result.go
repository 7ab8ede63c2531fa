package signal

import (
	"drugwatch/domain/core"
)

// ============================================================================
// CAUSALITY
// ============================================================================

// CausalityCategory is the WHO-UMC categorical assessment
type CausalityCategory string

const (
	CausalityCertain      CausalityCategory = "certain"
	CausalityProbable     CausalityCategory = "probable"
	CausalityPossible     CausalityCategory = "possible"
	CausalityUnlikely     CausalityCategory = "unlikely"
	CausalityConditional  CausalityCategory = "conditional"
	CausalityUnassessable CausalityCategory = "unassessable"
)

// NaranjoBand is the categorical band for a Naranjo point total
type NaranjoBand string

const (
	NaranjoDefinite NaranjoBand = "definite"
	NaranjoProbable NaranjoBand = "probable"
	NaranjoPossible NaranjoBand = "possible"
	NaranjoDoubtful NaranjoBand = "doubtful"
)

// CausalityAssessment combines both causality scoring schemes for one case set
type CausalityAssessment struct {
	WHOUMCCategory CausalityCategory `json:"whoumc_category"`
	NaranjoScore   int               `json:"naranjo_score"`
	NaranjoBand    NaranjoBand       `json:"naranjo_band"`
	Probability    float64           `json:"probability"` // 0-1 numeric causality score
	Rationale      []string          `json:"rationale,omitempty"`
}

// ============================================================================
// TEMPORAL PATTERNS
// ============================================================================

// TrendDirection labels the recent-versus-prior window comparison
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// LatencyStats summarizes time-to-onset across cases
type LatencyStats struct {
	MeanDays   float64 `json:"mean_days"`
	MedianDays float64 `json:"median_days"`
	IQRDays    float64 `json:"iqr_days"`
	Cases      int     `json:"cases"`
}

// TemporalResult holds the four independent temporal sub-scores.
// The caller decides which to weight.
type TemporalResult struct {
	Trend         TrendDirection `json:"trend"`
	TrendChange   float64        `json:"trend_change"` // relative change, recent vs prior window
	BurstDetected bool           `json:"burst_detected"`
	BurstScore    float64        `json:"burst_score"` // peak z-score over rolling baseline
	BurstBuckets  []int          `json:"burst_buckets,omitempty"`
	NoveltyScore  float64        `json:"novelty_score"` // 0-1, recent first report scores higher
	Latency       *LatencyStats  `json:"latency,omitempty"`
}

// ============================================================================
// UNIFIED RESULT
// ============================================================================

// UnifiedSignalResult is the per-pair output of the unified detector
type UnifiedSignalResult struct {
	Drug  core.DrugKey  `json:"drug"`
	Event core.EventKey `json:"event"`

	Table              ContingencyTable         `json:"table"`
	Disproportionality DisproportionalityResult `json:"disproportionality"`
	Bayesian           *BayesianResult          `json:"bayesian,omitempty"`
	Causality          *CausalityAssessment     `json:"causality,omitempty"`
	Temporal           *TemporalResult          `json:"temporal,omitempty"`

	IsSignal       bool           `json:"is_signal"`
	SignalStrength SignalStrength `json:"signal_strength"`
	MethodsFlagged []string       `json:"methods_flagged"` // ordered: prr, ror, ic, ebgm
}

// ============================================================================
// FUSION RESULT
// ============================================================================

// AlertLevel is the ordered categorical alert classification
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertLow      AlertLevel = "low"
	AlertModerate AlertLevel = "moderate"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// FusionComponents is the explainable per-term breakdown of the fused score.
// The tunneling term is always reported here, never hidden in the aggregate.
type FusionComponents struct {
	Rarity      float64 `json:"rarity"`
	Seriousness float64 `json:"seriousness"`
	Recency     float64 `json:"recency"`

	RareSerious   float64 `json:"rare_serious"`
	RareRecent    float64 `json:"rare_recent"`
	SeriousRecent float64 `json:"serious_recent"`
	AllThree      float64 `json:"all_three"`
	Tunneling     float64 `json:"tunneling"`

	// Multi-source terms, present only when Layer 2 ran
	Frequency *float64 `json:"frequency,omitempty"`
	Severity  *float64 `json:"severity,omitempty"`
	Burst     *float64 `json:"burst,omitempty"`
	Novelty   *float64 `json:"novelty,omitempty"`
	Consensus *float64 `json:"consensus,omitempty"`
	Mechanism *float64 `json:"mechanism,omitempty"`
}

// CompleteFusionResult wraps the unified result with the quantum-inspired
// layers and the final ranking score. Created once per evaluation; rank
// fields are filled only by the batch ranking pass.
type CompleteFusionResult struct {
	Drug  core.DrugKey  `json:"drug"`
	Event core.EventKey `json:"event"`

	Unified *UnifiedSignalResult `json:"unified,omitempty"`

	ClassicalScore     float64    `json:"classical_score"`
	QuantumScoreLayer1 float64    `json:"quantum_score_layer1"`
	QuantumScoreLayer2 *float64   `json:"quantum_score_layer2,omitempty"`
	FusionScore        float64    `json:"fusion_score"`
	AlertLevel         AlertLevel `json:"alert_level"`

	Components  FusionComponents `json:"components"`
	Explanation string           `json:"explanation,omitempty"`
	Fingerprint core.Hash        `json:"fingerprint"` // deterministic over the evaluation inputs

	// Rank fields assigned by the batch second pass
	QuantumRank   int     `json:"quantum_rank,omitempty"`
	ClassicalRank int     `json:"classical_rank,omitempty"`
	Percentile    float64 `json:"percentile,omitempty"`

	EvaluatedAt core.Timestamp `json:"evaluated_at"`
}
