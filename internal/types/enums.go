package types

// AlertType identifies which condition family a rule monitors.
type AlertType string

const (
	AlertTypeGoldenHour AlertType = "golden_hour"
	AlertTypeClearSkies AlertType = "clear_skies"
	AlertTypeLowWind    AlertType = "low_wind"
	AlertTypeCustom     AlertType = "custom"
)

// Valid reports whether t is one of the supported alert types.
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeGoldenHour, AlertTypeClearSkies, AlertTypeLowWind, AlertTypeCustom:
		return true
	}
	return false
}

// Channel is the medium through which a triggered alert reached the user.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// SubscriptionKind selects the sender used for a push subscription.
type SubscriptionKind string

const (
	// SubscriptionShoutrrr targets any service URL understood by shoutrrr
	// (ntfy, pushover, gotify, telegram and friends).
	SubscriptionShoutrrr SubscriptionKind = "shoutrrr"
	// SubscriptionWebhook posts a signed JSON payload to an HTTPS endpoint.
	SubscriptionWebhook SubscriptionKind = "webhook"
)

// SolarEventName labels the solar events considered by golden hour rules.
type SolarEventName string

const (
	EventSunrise           SolarEventName = "sunrise"
	EventMorningGoldenEnd  SolarEventName = "golden hour end"
	EventEveningGoldenHour SolarEventName = "golden hour"
	EventSunset            SolarEventName = "sunset"
)
