package disprop

// Thresholds holds the configurable signal criteria for the classical
// statistics. Regulatory guidance varies, so these are configuration rather
// than constants.
type Thresholds struct {
	PRRMin          float64 `json:"prr_min"`          // PRR point estimate floor
	RORMin          float64 `json:"ror_min"`          // ROR point estimate floor
	IC025Min        float64 `json:"ic025_min"`        // IC lower credibility bound floor
	CILowerMin      float64 `json:"ci_lower_min"`     // CI lower bound must exceed this
	MinCases        int     `json:"min_cases"`        // minimum n11 to flag
	ConfidenceLevel float64 `json:"confidence_level"` // e.g. 0.95
}

// Preset names the closed set of threshold profiles
type Preset string

const (
	PresetStandard  Preset = "standard"
	PresetStrict    Preset = "strict"
	PresetSensitive Preset = "sensitive"
)

// presetTable dispatches preset names to threshold sets; adding a profile is
// a one-place change.
var presetTable = map[Preset]Thresholds{
	PresetStandard: {
		PRRMin:          2.0,
		RORMin:          1.0,
		IC025Min:        0.0,
		CILowerMin:      1.0,
		MinCases:        3,
		ConfidenceLevel: 0.95,
	},
	PresetStrict: {
		PRRMin:          2.0,
		RORMin:          2.0,
		IC025Min:        0.5,
		CILowerMin:      1.0,
		MinCases:        5,
		ConfidenceLevel: 0.99,
	},
	PresetSensitive: {
		PRRMin:          1.5,
		RORMin:          1.0,
		IC025Min:        0.0,
		CILowerMin:      1.0,
		MinCases:        1,
		ConfidenceLevel: 0.90,
	},
}

// ThresholdsForPreset resolves a preset name, falling back to standard for
// unknown names so a bad config value cannot disable detection.
func ThresholdsForPreset(p Preset) Thresholds {
	if t, ok := presetTable[p]; ok {
		return t
	}
	return presetTable[PresetStandard]
}

// ListPresets returns the available preset names
func ListPresets() []Preset {
	return []Preset{PresetStandard, PresetStrict, PresetSensitive}
}
