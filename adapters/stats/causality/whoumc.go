package causality

import (
	"drugwatch/domain/signal"
)

// Onset windows for temporal plausibility, in days. Reactions reported
// before exposure or more than a year out are treated as implausible.
const (
	onsetPlausibleMinDays = 0
	onsetPlausibleMaxDays = 365
)

// assessWHOUMC walks the WHO-UMC decision sequence. It is a pure mapping
// from clinical features to a category; unassessed fields lower the
// category, they never disqualify the case.
func assessWHOUMC(f signal.ClinicalFeatures) (signal.CausalityCategory, []string) {
	var rationale []string

	onsetAssessed := f.TimeToOnsetDays != nil
	onsetPlausible := onsetAssessed &&
		*f.TimeToOnsetDays >= onsetPlausibleMinDays &&
		*f.TimeToOnsetDays <= onsetPlausibleMaxDays
	hasAlternatives := len(f.AlternativeCauses) > 0
	rechallengeAssessed := f.RechallengeRecurred != nil

	// Insufficient data: nothing assessed at all
	if !onsetAssessed && !f.DechallengeImproved && !rechallengeAssessed && !hasAlternatives {
		rationale = append(rationale, "no temporal, dechallenge or rechallenge information")
		return signal.CausalityUnassessable, rationale
	}

	// Temporal implausibility dominates everything else
	if onsetAssessed && !onsetPlausible {
		rationale = append(rationale, "onset outside the plausible window")
		return signal.CausalityUnlikely, rationale
	}

	// A stronger alternative explanation without supporting drug evidence
	if hasAlternatives && !f.DechallengeImproved && !f.DoseResponse {
		rationale = append(rationale, "alternative causes present without dechallenge support")
		return signal.CausalityUnlikely, rationale
	}

	// Contradictory picture: drug evidence and competing causes at once
	if hasAlternatives && f.DechallengeImproved {
		rationale = append(rationale, "dechallenge improvement confounded by alternative causes")
		return signal.CausalityConditional, rationale
	}

	if onsetPlausible && f.DechallengeImproved {
		if rechallengeAssessed && *f.RechallengeRecurred {
			rationale = append(rationale, "plausible onset, positive dechallenge and rechallenge")
			return signal.CausalityCertain, rationale
		}
		rationale = append(rationale, "plausible onset and positive dechallenge, no better explanation")
		return signal.CausalityProbable, rationale
	}

	rationale = append(rationale, "evidence plausible but incomplete")
	return signal.CausalityPossible, rationale
}
