package alerts

import (
	"time"

	"lightwatch/internal/types"
)

// PolicyDecision is what happens to a rule that matched and is not cooling down.
type PolicyDecision string

const (
	// PolicySuppress: the user turned notifications off. Nothing is recorded.
	PolicySuppress PolicyDecision = "suppress"
	// PolicyQueue: quiet hours are active. History is written without delivery.
	PolicyQueue PolicyDecision = "queue"
	// PolicyDeliver: pick a channel and notify.
	PolicyDeliver PolicyDecision = "deliver"
)

// Reasons reported for policy outcomes.
const (
	ReasonNotificationsDisabled = "Notifications disabled by user"
	ReasonQueued                = "queued"
	ReasonInCooldown            = "In cooldown period"
)

// PolicyResult pairs a decision with the reason reported on the outcome.
// Reason is empty for PolicyDeliver; the matcher's reason is used instead.
type PolicyResult struct {
	Decision PolicyDecision
	Reason   string
}

// NotificationPolicy applies the user's master switch and quiet hours.
type NotificationPolicy struct {
	defaultZone *time.Location
}

// NewNotificationPolicy returns a policy that reads quiet hours in the
// preferences' timezone, or defaultZone when none is stored.
func NewNotificationPolicy(defaultZone *time.Location) *NotificationPolicy {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &NotificationPolicy{defaultZone: defaultZone}
}

// Evaluate decides how a triggered rule is handled.
//
// Decision logic (in order of precedence):
//  1. Master switch off -> suppress
//  2. Quiet hours configured and the user's local hour inside them -> queue
//  3. Otherwise -> deliver
func (p *NotificationPolicy) Evaluate(prefs types.NotificationPreferences, now time.Time) PolicyResult {
	if !prefs.NotificationsEnabled {
		return PolicyResult{Decision: PolicySuppress, Reason: ReasonNotificationsDisabled}
	}
	if p.inQuietHours(prefs, now) {
		return PolicyResult{Decision: PolicyQueue, Reason: ReasonQueued}
	}
	return PolicyResult{Decision: PolicyDeliver}
}

func (p *NotificationPolicy) inQuietHours(prefs types.NotificationPreferences, now time.Time) bool {
	window, ok := prefs.QuietWindow()
	if !ok {
		return false
	}
	local := now.In(resolveZone(prefs.Timezone, p.defaultZone))
	return window.Contains(local.Hour())
}
