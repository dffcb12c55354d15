package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lightwatch/internal/types"
)

// PreferenceRepository reads notification preferences.
type PreferenceRepository struct {
	db DBTX
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetPreferences returns the stored preferences, or nil when the user has
// never saved any.
func (r *PreferenceRepository) GetPreferences(ctx context.Context, userID string) (*types.NotificationPreferences, error) {
	var (
		p          types.NotificationPreferences
		quietStart *int32
		quietEnd   *int32
		cooldown   int32
		dailyCap   *int32
		timezone   *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT user_id, notifications_enabled, push_enabled, in_app_enabled,
		        quiet_hours_start, quiet_hours_end, cooldown_hours, daily_cap, timezone
		   FROM notification_preferences
		  WHERE user_id = $1`,
		userID,
	).Scan(
		&p.UserID,
		&p.NotificationsEnabled,
		&p.PushEnabled,
		&p.InAppEnabled,
		&quietStart,
		&quietEnd,
		&cooldown,
		&dailyCap,
		&timezone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load notification preferences", err)
	}

	p.QuietHoursStart = int32PtrToInt(quietStart)
	p.QuietHoursEnd = int32PtrToInt(quietEnd)
	p.CooldownHours = int(cooldown)
	p.DailyCap = int32PtrToInt(dailyCap)
	p.Timezone = stringOrEmpty(timezone)
	return &p, nil
}
