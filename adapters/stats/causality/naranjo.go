package causality

import (
	"drugwatch/domain/signal"
)

// naranjoItem is one scored question of the Naranjo algorithm. Questions the
// feature set cannot answer score zero, matching the "do not know" column of
// the published questionnaire.
type naranjoItem struct {
	name  string
	score func(f signal.ClinicalFeatures) int
}

var naranjoItems = []naranjoItem{
	{"previous_reports", func(f signal.ClinicalFeatures) int {
		if f.KnownReaction {
			return 1
		}
		return 0
	}},
	{"temporal_relationship", func(f signal.ClinicalFeatures) int {
		if f.TimeToOnsetDays != nil && *f.TimeToOnsetDays >= 0 {
			return 2
		}
		return 0
	}},
	{"dechallenge", func(f signal.ClinicalFeatures) int {
		if f.DechallengeImproved {
			return 1
		}
		return 0
	}},
	{"rechallenge", func(f signal.ClinicalFeatures) int {
		if f.RechallengeRecurred == nil {
			return 0
		}
		if *f.RechallengeRecurred {
			return 2
		}
		return -1
	}},
	{"alternative_causes", func(f signal.ClinicalFeatures) int {
		// nil means unassessed; an assessed-but-empty list is exonerating
		if f.AlternativeCauses == nil {
			return 0
		}
		if len(f.AlternativeCauses) > 0 {
			return -1
		}
		return 2
	}},
	{"dose_response", func(f signal.ClinicalFeatures) int {
		if f.DoseResponse {
			return 1
		}
		return 0
	}},
	{"objective_evidence", func(f signal.ClinicalFeatures) int {
		if f.LabEvidence {
			return 1
		}
		return 0
	}},
}

// scoreNaranjo sums the weighted items and maps the total to its band
func scoreNaranjo(f signal.ClinicalFeatures) (int, signal.NaranjoBand) {
	total := 0
	for _, item := range naranjoItems {
		total += item.score(f)
	}
	return total, naranjoBand(total)
}

func naranjoBand(score int) signal.NaranjoBand {
	switch {
	case score >= 9:
		return signal.NaranjoDefinite
	case score >= 5:
		return signal.NaranjoProbable
	case score >= 1:
		return signal.NaranjoPossible
	default:
		return signal.NaranjoDoubtful
	}
}
