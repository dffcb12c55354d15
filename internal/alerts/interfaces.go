// Package alerts evaluates photography alert rules against live weather and
// solar data and decides whether, and how, to notify the rule's owner.
//
// One call to Orchestrator.Run is one evaluation cycle. The package owns no
// I/O of its own; every read and write goes through the collaborator
// interfaces declared here.
package alerts

import (
	"context"
	"time"

	"lightwatch/internal/types"
)

// RuleStore loads rules and persists the last-trigger transition.
type RuleStore interface {
	// ListActiveRules returns every active rule with its location joined in.
	ListActiveRules(ctx context.Context) ([]types.AlertRule, error)
	UpdateLastTriggered(ctx context.Context, ruleID string, at time.Time) error
}

// PreferenceStore reads per-user notification settings. A nil result with a
// nil error means the user has no stored preferences.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*types.NotificationPreferences, error)
}

// WeatherProvider fetches current conditions at a coordinate.
type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, lat, lng float64) (*types.WeatherSnapshot, error)
}

// PushTransport delivers a push notification to all of a user's
// subscriptions. It reports false, without error, when the user has none.
type PushTransport interface {
	Send(ctx context.Context, userID string, payload types.PushPayload) (bool, error)
}

// HistoryStore appends alert history entries.
type HistoryStore interface {
	Append(ctx context.Context, entry *types.AlertHistoryEntry) error
}

// SolarCalculator computes the solar events for the day containing at.
type SolarCalculator interface {
	Calculate(lat, lng float64, at time.Time) types.SolarEventSet
}

// Locker is a lease used to keep two cycles from overlapping.
type Locker interface {
	Acquire(ctx context.Context, lockID, workerID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, lockID, workerID string) error
}

// MetricPublisher receives the summary of each finished cycle.
type MetricPublisher interface {
	PublishCycle(ctx context.Context, summary *types.CycleSummary) error
}
