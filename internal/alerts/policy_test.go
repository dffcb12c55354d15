package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lightwatch/internal/types"
)

func intPtr(v int) *int { return &v }

func TestInCooldown(t *testing.T) {
	last := testNow.Add(-2 * time.Hour)
	tests := []struct {
		name  string
		last  *time.Time
		hours int
		want  bool
	}{
		{"never triggered", nil, 6, false},
		{"inside cooldown", &last, 6, true},
		{"cooldown elapsed", &last, 2, false},
		{"just inside", &last, 3, true},
		{"zero cooldown", &last, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := types.AlertRule{LastTriggeredAt: tt.last}
			assert.Equal(t, tt.want, InCooldown(rule, tt.hours, testNow))
		})
	}
}

func TestNotificationPolicy_Evaluate(t *testing.T) {
	p := NewNotificationPolicy(time.UTC)

	tests := []struct {
		name     string
		prefs    func() types.NotificationPreferences
		now      time.Time
		decision PolicyDecision
		reason   string
	}{
		{
			name:     "defaults deliver",
			prefs:    func() types.NotificationPreferences { return types.DefaultPreferences("u") },
			now:      testNow,
			decision: PolicyDeliver,
		},
		{
			name: "master switch off wins over quiet hours",
			prefs: func() types.NotificationPreferences {
				pr := types.DefaultPreferences("u")
				pr.NotificationsEnabled = false
				pr.QuietHoursStart, pr.QuietHoursEnd = intPtr(0), intPtr(23)
				return pr
			},
			now:      testNow,
			decision: PolicySuppress,
			reason:   ReasonNotificationsDisabled,
		},
		{
			name: "overnight quiet hours late evening",
			prefs: func() types.NotificationPreferences {
				pr := types.DefaultPreferences("u")
				pr.QuietHoursStart, pr.QuietHoursEnd = intPtr(22), intPtr(7)
				return pr
			},
			now:      time.Date(2026, 6, 20, 23, 15, 0, 0, time.UTC),
			decision: PolicyQueue,
			reason:   ReasonQueued,
		},
		{
			name: "overnight quiet hours end is exclusive",
			prefs: func() types.NotificationPreferences {
				pr := types.DefaultPreferences("u")
				pr.QuietHoursStart, pr.QuietHoursEnd = intPtr(22), intPtr(7)
				return pr
			},
			now:      time.Date(2026, 6, 20, 7, 0, 0, 0, time.UTC),
			decision: PolicyDeliver,
		},
		{
			name: "only one bound set means no quiet hours",
			prefs: func() types.NotificationPreferences {
				pr := types.DefaultPreferences("u")
				pr.QuietHoursStart = intPtr(0)
				return pr
			},
			now:      testNow,
			decision: PolicyDeliver,
		},
		{
			name: "quiet hours read in the user's timezone",
			prefs: func() types.NotificationPreferences {
				pr := types.DefaultPreferences("u")
				pr.QuietHoursStart, pr.QuietHoursEnd = intPtr(22), intPtr(7)
				pr.Timezone = "Asia/Tokyo"
				return pr
			},
			// 14:00 UTC is 23:00 in Tokyo.
			now:      testNow,
			decision: PolicyQueue,
			reason:   ReasonQueued,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Evaluate(tt.prefs(), tt.now)
			assert.Equal(t, tt.decision, res.Decision)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}
