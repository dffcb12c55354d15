package db

import (
	"context"

	"lightwatch/internal/types"
)

// SubscriptionRepository manages push subscriptions.
type SubscriptionRepository struct {
	db DBTX
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// ListByUser returns a user's subscriptions, oldest first.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]types.PushSubscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, kind, target, secret, created_at
		   FROM push_subscriptions
		  WHERE user_id = $1
		  ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list push subscriptions", err)
	}
	defer rows.Close()

	var subs []types.PushSubscription
	for rows.Next() {
		var (
			s      types.PushSubscription
			kind   string
			target string
			secret *string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &kind, &target, &secret, &s.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan push subscription", err)
		}
		s.Kind = types.SubscriptionKind(kind)
		s.Target = types.SecretString(target)
		s.Secret = types.SecretString(stringOrEmpty(secret))
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate push subscriptions", err)
	}
	return subs, nil
}

// Delete removes a subscription. Deleting a subscription that is already
// gone is not an error.
func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete push subscription", err)
	}
	return nil
}
