package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"lightwatch/internal/types"
)

type mockRuleStore struct{ mock.Mock }

func (m *mockRuleStore) ListActiveRules(ctx context.Context) ([]types.AlertRule, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).([]types.AlertRule)
	return rules, args.Error(1)
}

func (m *mockRuleStore) UpdateLastTriggered(ctx context.Context, ruleID string, at time.Time) error {
	return m.Called(ctx, ruleID, at).Error(0)
}

type mockPreferenceStore struct{ mock.Mock }

func (m *mockPreferenceStore) GetPreferences(ctx context.Context, userID string) (*types.NotificationPreferences, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*types.NotificationPreferences)
	return p, args.Error(1)
}

type mockWeather struct{ mock.Mock }

func (m *mockWeather) GetCurrentWeather(ctx context.Context, lat, lng float64) (*types.WeatherSnapshot, error) {
	args := m.Called(ctx, lat, lng)
	w, _ := args.Get(0).(*types.WeatherSnapshot)
	return w, args.Error(1)
}

type mockPush struct{ mock.Mock }

func (m *mockPush) Send(ctx context.Context, userID string, payload types.PushPayload) (bool, error) {
	args := m.Called(ctx, userID, payload)
	return args.Bool(0), args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) Append(ctx context.Context, entry *types.AlertHistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

// entries returns every entry passed to Append, in call order.
func (m *mockHistory) entries() []*types.AlertHistoryEntry {
	var out []*types.AlertHistoryEntry
	for _, c := range m.Calls {
		if c.Method == "Append" {
			out = append(out, c.Arguments.Get(1).(*types.AlertHistoryEntry))
		}
	}
	return out
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) Acquire(ctx context.Context, lockID, workerID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, lockID, workerID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) Release(ctx context.Context, lockID, workerID string) error {
	return m.Called(ctx, lockID, workerID).Error(0)
}

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) PublishCycle(ctx context.Context, summary *types.CycleSummary) error {
	return m.Called(ctx, summary).Error(0)
}

// fakeSolar returns a fixed event set and counts calls.
type fakeSolar struct {
	mu    sync.Mutex
	set   types.SolarEventSet
	calls int
}

func (f *fakeSolar) Calculate(lat, lng float64, at time.Time) types.SolarEventSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.set
}
