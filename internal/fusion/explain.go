package fusion

import (
	"fmt"
	"strings"

	"drugwatch/domain/signal"
)

// explain renders the one-line human summary attached to every result.
// It names the drivers a reviewer would ask about first.
func explain(r *signal.CompleteFusionResult) string {
	var parts []string

	if r.Unified != nil && len(r.Unified.MethodsFlagged) > 0 {
		parts = append(parts, fmt.Sprintf("%d method(s) flagged (%s)",
			len(r.Unified.MethodsFlagged), strings.Join(r.Unified.MethodsFlagged, ", ")))
	} else {
		parts = append(parts, "no statistical method flagged")
	}

	c := r.Components
	if c.Rarity >= 0.7 {
		parts = append(parts, fmt.Sprintf("rare pair (rarity %.2f)", c.Rarity))
	}
	if c.Seriousness >= 0.5 {
		parts = append(parts, fmt.Sprintf("%.0f%% of cases serious", c.Seriousness*100))
	}
	if c.Tunneling > 0 {
		parts = append(parts, fmt.Sprintf("tunneling bonus %.2f applied", c.Tunneling))
	}
	if c.Burst != nil && *c.Burst > 0 {
		parts = append(parts, "reporting burst detected")
	}
	if c.Consensus != nil && *c.Consensus >= 0.5 {
		parts = append(parts, "multiple independent sources agree")
	}

	return fmt.Sprintf("%s alert (fusion %.3f): %s",
		r.AlertLevel, r.FusionScore, strings.Join(parts, "; "))
}
