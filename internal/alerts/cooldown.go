package alerts

import (
	"time"

	"lightwatch/internal/types"
)

// InCooldown reports whether the rule fired less than cooldownHours ago.
// A rule that has never fired is never in cooldown.
func InCooldown(rule types.AlertRule, cooldownHours int, now time.Time) bool {
	if rule.LastTriggeredAt == nil {
		return false
	}
	return now.Sub(*rule.LastTriggeredAt) < time.Duration(cooldownHours)*time.Hour
}
