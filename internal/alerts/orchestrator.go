package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lightwatch/internal/types"
)

// ErrCycleInProgress is returned by Run when another cycle holds the lock.
var ErrCycleInProgress = errors.New("alerts: evaluation cycle already in progress")

const (
	cycleLockID                   = "alert_evaluation_cycle"
	defaultMaxConcurrentLocations = 4
	defaultLockTTL                = 10 * time.Minute
	alertsPath                    = "/alerts"
)

// OrchestratorConfig wires the orchestrator's collaborators and knobs.
type OrchestratorConfig struct {
	Rules       RuleStore
	Preferences PreferenceStore
	Weather     WeatherProvider
	Push        PushTransport
	History     HistoryStore
	Solar       SolarCalculator

	// Locker is optional. Without it overlapping cycles are not prevented.
	Locker Locker
	// Metrics is optional. Publishing failures are logged and ignored.
	Metrics MetricPublisher

	Clock  types.Clock
	Logger *slog.Logger

	MaxConcurrentLocations int
	DefaultTimezone        *time.Location
	CachePreferences       bool
	LockTTL                time.Duration
	WorkerID               string
}

// Orchestrator runs evaluation cycles.
type Orchestrator struct {
	rules   RuleStore
	prefs   PreferenceStore
	weather WeatherProvider
	push    PushTransport
	history HistoryStore
	solar   SolarCalculator
	locker  Locker
	metrics MetricPublisher

	matcher *Matcher
	policy  *NotificationPolicy
	clock   types.Clock
	logger  *slog.Logger

	maxConcurrent    int
	cachePreferences bool
	lockTTL          time.Duration
	workerID         string
}

// NewOrchestrator validates cfg and returns an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	switch {
	case cfg.Rules == nil:
		return nil, errors.New("alerts: rule store is required")
	case cfg.Preferences == nil:
		return nil, errors.New("alerts: preference store is required")
	case cfg.Weather == nil:
		return nil, errors.New("alerts: weather provider is required")
	case cfg.History == nil:
		return nil, errors.New("alerts: history store is required")
	case cfg.Solar == nil:
		return nil, errors.New("alerts: solar calculator is required")
	}

	o := &Orchestrator{
		rules:            cfg.Rules,
		prefs:            cfg.Preferences,
		weather:          cfg.Weather,
		push:             cfg.Push,
		history:          cfg.History,
		solar:            cfg.Solar,
		locker:           cfg.Locker,
		metrics:          cfg.Metrics,
		matcher:          NewMatcher(cfg.DefaultTimezone),
		policy:           NewNotificationPolicy(cfg.DefaultTimezone),
		clock:            cfg.Clock,
		logger:           cfg.Logger,
		maxConcurrent:    cfg.MaxConcurrentLocations,
		cachePreferences: cfg.CachePreferences,
		lockTTL:          cfg.LockTTL,
		workerID:         cfg.WorkerID,
	}
	if o.clock == nil {
		o.clock = types.RealClock{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.maxConcurrent <= 0 {
		o.maxConcurrent = defaultMaxConcurrentLocations
	}
	if o.lockTTL <= 0 {
		o.lockTTL = defaultLockTTL
	}
	if o.workerID == "" {
		o.workerID = uuid.NewString()
	}
	return o, nil
}

// Run executes one cycle using the orchestrator's clock.
func (o *Orchestrator) Run(ctx context.Context) (*types.CycleSummary, error) {
	return o.RunAt(ctx, o.clock.Now())
}

// RunAt executes one cycle as if the current time were now. The same instant
// is used for every rule in the cycle.
//
// A non-nil error means the cycle could not run (rules could not be listed,
// the lock could not be taken) or was cancelled part way. In the cancelled
// case the returned summary covers the rules that finished.
func (o *Orchestrator) RunAt(ctx context.Context, now time.Time) (*types.CycleSummary, error) {
	cycleID := uuid.NewString()
	ctx = types.WithCycleID(ctx, cycleID)
	logger := o.logger.With("cycle_id", cycleID)

	if o.locker != nil {
		acquired, err := o.locker.Acquire(ctx, cycleLockID, o.workerID, o.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire cycle lock: %w", err)
		}
		if !acquired {
			logger.InfoContext(ctx, "skipping cycle, another evaluation holds the lock")
			return nil, ErrCycleInProgress
		}
		defer o.releaseLock(logger)
	}

	summary := &types.CycleSummary{CycleID: cycleID, StartedAt: now}

	rules, err := o.rules.ListActiveRules(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list active rules", "error", err)
		return nil, fmt.Errorf("list active rules: %w", err)
	}

	groups := groupByLocation(rules)
	logger.InfoContext(ctx, "evaluation cycle started",
		"rules", len(rules),
		"locations", len(groups),
	)

	var reader preferenceReader = storeReader{store: o.prefs}
	if o.cachePreferences {
		reader = newCycleCache(reader)
	}

	results := make([][]types.EvaluationOutcome, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)
	for i, grp := range groups {
		g.Go(func() error {
			results[i] = o.evaluateGroup(gctx, grp, reader, now, logger)
			return nil
		})
	}
	_ = g.Wait()

	for _, outcomes := range results {
		for _, oc := range outcomes {
			summary.Record(oc)
		}
	}
	summary.FinishedAt = o.clock.Now()

	if o.metrics != nil {
		if err := o.metrics.PublishCycle(ctx, summary); err != nil {
			logger.WarnContext(ctx, "failed to publish cycle metrics", "error", err)
		}
	}

	logger.InfoContext(ctx, "evaluation cycle finished",
		"checked", summary.Checked,
		"triggered", summary.Triggered,
		"errors", summary.Errors,
		"duration_ms", summary.Duration().Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("evaluation cycle interrupted: %w", err)
	}
	return summary, nil
}

func (o *Orchestrator) releaseLock(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.locker.Release(ctx, cycleLockID, o.workerID); err != nil {
		logger.WarnContext(ctx, "failed to release cycle lock", "error", err)
	}
}

// locationGroup is the set of rules sharing one location, and so one
// weather fetch.
type locationGroup struct {
	location types.Location
	rules    []types.AlertRule
}

// groupByLocation buckets rules by location in first-seen order. A rule ID
// seen twice is kept once.
func groupByLocation(rules []types.AlertRule) []locationGroup {
	index := make(map[string]int)
	seen := make(map[string]struct{}, len(rules))
	var groups []locationGroup

	for _, r := range rules {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}

		i, ok := index[r.LocationID]
		if !ok {
			i = len(groups)
			index[r.LocationID] = i
			loc := r.Location
			if loc.ID == "" {
				loc.ID = r.LocationID
			}
			groups = append(groups, locationGroup{location: loc})
		}
		groups[i].rules = append(groups[i].rules, r)
	}
	return groups
}

// evaluateGroup fetches weather once and evaluates the group's rules in
// order. Rules not reached before ctx is cancelled produce no outcome.
func (o *Orchestrator) evaluateGroup(ctx context.Context, grp locationGroup, prefs preferenceReader, now time.Time, logger *slog.Logger) []types.EvaluationOutcome {
	logger = logger.With("location_id", grp.location.ID)
	outcomes := make([]types.EvaluationOutcome, 0, len(grp.rules))

	weather, err := o.weather.GetCurrentWeather(ctx, grp.location.Lat, grp.location.Lng)
	if err == nil && weather == nil {
		err = errors.New("provider returned no data")
	}
	if err != nil {
		logger.WarnContext(ctx, "weather fetch failed", "error", err, "rules", len(grp.rules))
		for _, rule := range grp.rules {
			oc := outcomeFor(rule)
			oc.Error = "weather fetch failed: " + err.Error()
			outcomes = append(outcomes, oc)
		}
		return outcomes
	}

	var solar *types.SolarEventSet
	solarFor := func() types.SolarEventSet {
		if solar == nil {
			s := o.solar.Calculate(grp.location.Lat, grp.location.Lng, now)
			solar = &s
		}
		return *solar
	}

	for _, rule := range grp.rules {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "cycle cancelled, abandoning remaining rules in group")
			break
		}
		outcomes = append(outcomes, o.evaluateRule(ctx, rule, *weather, solarFor, prefs, now, logger))
	}
	return outcomes
}

func outcomeFor(rule types.AlertRule) types.EvaluationOutcome {
	return types.EvaluationOutcome{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		UserID:     rule.UserID,
		LocationID: rule.LocationID,
	}
}

func (o *Orchestrator) evaluateRule(
	ctx context.Context,
	rule types.AlertRule,
	weather types.WeatherSnapshot,
	solarFor func() types.SolarEventSet,
	prefs preferenceReader,
	now time.Time,
	logger *slog.Logger,
) types.EvaluationOutcome {
	oc := outcomeFor(rule)
	logger = logger.With("rule_id", rule.ID, "user_id", rule.UserID)

	if !rule.IsActive {
		oc.Reason = "Rule is inactive"
		return oc
	}
	if err := types.ValidateRule(rule); err != nil {
		oc.Error = "invalid rule: " + err.Error()
		logger.WarnContext(ctx, "skipping invalid rule", "error", err)
		return oc
	}

	var solar types.SolarEventSet
	if rule.AlertType == types.AlertTypeGoldenHour {
		solar = solarFor()
	}
	match, err := o.matcher.Match(rule, weather, solar, now)
	if err != nil {
		oc.Error = "match failed: " + err.Error()
		return oc
	}
	if !match.Matched {
		oc.Reason = match.Reason
		return oc
	}

	p, err := prefs.get(ctx, rule.UserID)
	if err != nil {
		oc.Error = "preferences read failed: " + err.Error()
		logger.WarnContext(ctx, "failed to read notification preferences", "error", err)
		return oc
	}

	if InCooldown(rule, p.CooldownHours, now) {
		oc.Reason = ReasonInCooldown
		return oc
	}

	decision := o.policy.Evaluate(p, now)
	switch decision.Decision {
	case PolicySuppress:
		// The rule counts as triggered but leaves no trace: no history and no
		// cooldown, so it fires again next cycle if notifications come back on.
		oc.Triggered = true
		oc.Reason = decision.Reason
		return oc

	case PolicyQueue:
		if err := o.commit(ctx, rule, match.Snapshot, nil, false, now); err != nil {
			oc.Error = err.Error()
			logger.ErrorContext(ctx, "failed to record queued alert", "error", err)
			return oc
		}
		oc.Triggered = true
		oc.Reason = decision.Reason
		logger.InfoContext(ctx, "alert queued during quiet hours")
		return oc

	default:
		channel, sent := o.deliver(ctx, rule, match, p, now, logger)
		oc.NotificationSent = sent
		oc.Channel = channel
		if err := o.commit(ctx, rule, match.Snapshot, channel, sent, now); err != nil {
			oc.Error = err.Error()
			logger.ErrorContext(ctx, "failed to record triggered alert", "error", err)
			return oc
		}
		oc.Triggered = true
		oc.Reason = match.Reason
		logger.InfoContext(ctx, "alert triggered",
			"reason", match.Reason,
			"notification_sent", sent,
			"channel", channelName(channel),
		)
		return oc
	}
}

// deliver tries push first and falls back to in-app. It returns the channel
// used, or nil when neither is enabled.
func (o *Orchestrator) deliver(ctx context.Context, rule types.AlertRule, match MatchResult, p types.NotificationPreferences, now time.Time, logger *slog.Logger) (*types.Channel, bool) {
	if p.PushEnabled && o.push != nil {
		payload := types.PushPayload{
			Title:     rule.Name,
			Body:      match.Reason,
			URL:       alertsPath,
			Tag:       "alert-" + rule.ID,
			AlertType: rule.AlertType,
			SentAt:    now,
		}
		ok, err := o.push.Send(types.WithLogger(ctx, logger), rule.UserID, payload)
		if err != nil {
			logger.WarnContext(ctx, "push delivery failed", "error", err)
		}
		if ok {
			ch := types.ChannelPush
			return &ch, true
		}
	}
	if p.InAppEnabled {
		ch := types.ChannelInApp
		return &ch, true
	}
	return nil, false
}

// commit writes the history entry and then moves the rule into cooldown.
func (o *Orchestrator) commit(ctx context.Context, rule types.AlertRule, snapshot types.ConditionsSnapshot, channel *types.Channel, sent bool, now time.Time) error {
	entry := &types.AlertHistoryEntry{
		ID:                  uuid.NewString(),
		RuleID:              rule.ID,
		UserID:              rule.UserID,
		Conditions:          snapshot,
		NotificationSent:    sent,
		NotificationChannel: channel,
		TriggeredAt:         now,
	}
	if err := o.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("history write failed: %w", err)
	}

	triggered := rule.MarkTriggered(now)
	if err := o.rules.UpdateLastTriggered(ctx, triggered.ID, *triggered.LastTriggeredAt); err != nil {
		return fmt.Errorf("last trigger update failed: %w", err)
	}
	return nil
}

func channelName(c *types.Channel) string {
	if c == nil {
		return "none"
	}
	return string(*c)
}
