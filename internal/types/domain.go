package types

import (
	"time"
)

// Location is the point a rule watches. Only the fields the evaluator needs
// are loaded; the rest of the location record belongs to other services.
type Location struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" validate:"min=-180,max=180"`
	Timezone string  `json:"timezone,omitempty"`
}

// TimeWindow restricts evaluation to local hours [StartHour, EndHour).
// A window whose start is after its end wraps past midnight.
type TimeWindow struct {
	StartHour int `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int `json:"end_hour" validate:"min=0,max=23"`
}

// Contains reports whether the given local hour falls inside the window.
func (w TimeWindow) Contains(hour int) bool {
	if w.StartHour > w.EndHour {
		return hour >= w.StartHour || hour < w.EndHour
	}
	return hour >= w.StartHour && hour < w.EndHour
}

// AlertRule is a user-defined monitoring rule bound to one location.
type AlertRule struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	LocationID      string      `json:"location_id"`
	Name            string      `json:"name"`
	AlertType       AlertType   `json:"alert_type"`
	Conditions      Conditions  `json:"conditions" validate:"-"`
	TimeWindow      *TimeWindow `json:"time_window,omitempty"`
	DaysOfWeek      []int       `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	LeadTimeMinutes int         `json:"lead_time_minutes" validate:"min=0,max=1440"`
	IsActive        bool        `json:"is_active"`
	LastTriggeredAt *time.Time  `json:"last_triggered_at,omitempty"`
	Location        Location    `json:"location"`
	CreatedAt       time.Time   `json:"created_at"`
}

// MarkTriggered returns a copy of the rule with LastTriggeredAt set to at.
// The receiver is left untouched; persisting the new value is the caller's job.
func (r AlertRule) MarkTriggered(at time.Time) AlertRule {
	t := at
	r.LastTriggeredAt = &t
	return r
}

// ScheduledOn reports whether the rule runs on the given weekday.
// A rule without a day list runs every day.
func (r AlertRule) ScheduledOn(day time.Weekday) bool {
	if len(r.DaysOfWeek) == 0 {
		return true
	}
	for _, d := range r.DaysOfWeek {
		if d == int(day) {
			return true
		}
	}
	return false
}

// LeadTime returns the golden hour lead time, falling back to the default
// when the stored value is not positive.
func (r AlertRule) LeadTime() time.Duration {
	minutes := r.LeadTimeMinutes
	if minutes <= 0 {
		minutes = DefaultLeadTimeMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// WeatherSnapshot is the current weather at a location. Units: percent for
// cloud cover and precipitation probability, km/h for wind, km for
// visibility, Celsius for temperature.
type WeatherSnapshot struct {
	CloudCover               float64   `json:"cloud_cover"`
	WindSpeed                float64   `json:"wind_speed"`
	Visibility               float64   `json:"visibility"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
	Temperature              float64   `json:"temperature"`
	Description              string    `json:"description"`
	ObservedAt               time.Time `json:"observed_at,omitempty"`
}

// SolarEventSet holds the solar events for one calendar day at one location.
// A zero time means the event does not occur that day (polar day or night).
type SolarEventSet struct {
	Sunrise         time.Time `json:"sunrise"`
	Sunset          time.Time `json:"sunset"`
	GoldenHourEnd   time.Time `json:"golden_hour_end"`
	GoldenHourStart time.Time `json:"golden_hour_start"`
}

// SolarEvent pairs an event label with its instant.
type SolarEvent struct {
	Name SolarEventName
	At   time.Time
}

// Ordered returns the events in the order golden hour rules consider them:
// sunrise, morning golden hour end, evening golden hour start, sunset.
func (s SolarEventSet) Ordered() []SolarEvent {
	return []SolarEvent{
		{Name: EventSunrise, At: s.Sunrise},
		{Name: EventMorningGoldenEnd, At: s.GoldenHourEnd},
		{Name: EventEveningGoldenHour, At: s.GoldenHourStart},
		{Name: EventSunset, At: s.Sunset},
	}
}

// ConditionsSnapshot is the weather (and, for golden hour rules, the solar
// event) recorded alongside an alert history entry.
type ConditionsSnapshot struct {
	CloudCover               float64    `json:"cloud_cover"`
	WindSpeed                float64    `json:"wind_speed"`
	Visibility               float64    `json:"visibility"`
	PrecipitationProbability float64    `json:"precipitation_probability"`
	Temperature              float64    `json:"temperature"`
	Description              string     `json:"description"`
	Event                    string     `json:"event,omitempty"`
	EventTime                *time.Time `json:"event_time,omitempty"`
}

// SnapshotOf copies the weather fields into a ConditionsSnapshot.
func SnapshotOf(w WeatherSnapshot) ConditionsSnapshot {
	return ConditionsSnapshot{
		CloudCover:               w.CloudCover,
		WindSpeed:                w.WindSpeed,
		Visibility:               w.Visibility,
		PrecipitationProbability: w.PrecipitationProbability,
		Temperature:              w.Temperature,
		Description:              w.Description,
	}
}

// WithEvent returns a copy of the snapshot annotated with a solar event.
func (s ConditionsSnapshot) WithEvent(e SolarEvent) ConditionsSnapshot {
	at := e.At
	s.Event = string(e.Name)
	s.EventTime = &at
	return s
}

// NotificationPreferences are the per-user delivery settings.
type NotificationPreferences struct {
	UserID               string `json:"user_id"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	PushEnabled          bool   `json:"push_enabled"`
	InAppEnabled         bool   `json:"in_app_enabled"`
	// QuietHoursStart and QuietHoursEnd are local hours; both must be set
	// for quiet hours to apply. The range wraps past midnight when start > end.
	QuietHoursStart *int   `json:"quiet_hours_start,omitempty" validate:"omitempty,min=0,max=23"`
	QuietHoursEnd   *int   `json:"quiet_hours_end,omitempty" validate:"omitempty,min=0,max=23"`
	CooldownHours   int    `json:"cooldown_hours" validate:"min=0"`
	DailyCap        *int   `json:"daily_cap,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// DefaultCooldownHours applies when a user has no stored preferences.
const DefaultCooldownHours = 6

// DefaultPreferences returns the settings used for users without a
// preferences row.
func DefaultPreferences(userID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:               userID,
		NotificationsEnabled: true,
		PushEnabled:          true,
		InAppEnabled:         true,
		CooldownHours:        DefaultCooldownHours,
	}
}

// QuietWindow returns the quiet hours as a TimeWindow, or false when the user
// has not configured them.
func (p NotificationPreferences) QuietWindow() (TimeWindow, bool) {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return TimeWindow{}, false
	}
	return TimeWindow{StartHour: *p.QuietHoursStart, EndHour: *p.QuietHoursEnd}, true
}

// AlertHistoryEntry is the persisted record of a triggered rule.
type AlertHistoryEntry struct {
	ID                  string             `json:"id"`
	RuleID              string             `json:"rule_id"`
	UserID              string             `json:"user_id"`
	Conditions          ConditionsSnapshot `json:"conditions_snapshot"`
	NotificationSent    bool               `json:"notification_sent"`
	NotificationChannel *Channel           `json:"notification_channel"`
	TriggeredAt         time.Time          `json:"triggered_at"`
	Read                bool               `json:"read"`
}

// PushSubscription is one delivery endpoint registered by a user.
type PushSubscription struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      SubscriptionKind `json:"kind"`
	Target    SecretString     `json:"target"`
	Secret    SecretString     `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

// PushPayload is the message handed to the push transport.
type PushPayload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Tag       string    `json:"tag"`
	AlertType AlertType `json:"alert_type"`
	SentAt    time.Time `json:"sent_at"`
}

// EvaluationOutcome is the per-rule result of one cycle.
type EvaluationOutcome struct {
	RuleID           string   `json:"rule_id"`
	RuleName         string   `json:"rule_name,omitempty"`
	UserID           string   `json:"user_id,omitempty"`
	LocationID       string   `json:"location_id,omitempty"`
	Triggered        bool     `json:"triggered"`
	Reason           string   `json:"reason,omitempty"`
	NotificationSent bool     `json:"notification_sent"`
	Channel          *Channel `json:"channel,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// CycleSummary aggregates the outcomes of one evaluation cycle.
type CycleSummary struct {
	CycleID    string              `json:"cycle_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Checked    int                 `json:"checked"`
	Triggered  int                 `json:"triggered"`
	Errors     int                 `json:"errors"`
	Outcomes   []EvaluationOutcome `json:"outcomes,omitempty"`
}

// Record appends an outcome and updates the counters.
func (s *CycleSummary) Record(o EvaluationOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Checked++
	if o.Triggered {
		s.Triggered++
	}
	if o.Error != "" {
		s.Errors++
	}
}

// Duration is the wall time the cycle took.
func (s *CycleSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
