package db

import (
	"context"

	"lightwatch/internal/types"
)

// HistoryRepository appends alert history entries.
type HistoryRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one history entry. The conditions snapshot is stored as
// JSONB; a nil channel is stored as NULL.
func (r *HistoryRepository) Append(ctx context.Context, entry *types.AlertHistoryEntry) error {
	var channel *string
	if entry.NotificationChannel != nil {
		c := string(*entry.NotificationChannel)
		channel = &c
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO alert_history
		   (id, rule_id, user_id, conditions_snapshot, notification_sent, notification_channel, triggered_at, read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.RuleID,
		entry.UserID,
		entry.Conditions,
		entry.NotificationSent,
		channel,
		entry.TriggeredAt,
		entry.Read,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert alert history", err)
	}
	return nil
}
