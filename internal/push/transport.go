// Package push fans alert payloads out to a user's push subscriptions.
//
// A subscription is either a shoutrrr service URL (ntfy, Pushover, Telegram,
// Discord and the rest of the shoutrrr catalogue) or a signed JSON webhook.
// Targets that report themselves gone are pruned so later cycles stop paying
// for them.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lightwatch/internal/types"
)

// SubscriptionStore is the persistence the transport needs.
type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]types.PushSubscription, error)
	Delete(ctx context.Context, id string) error
}

// Sender delivers a payload to one subscription. Implementations return an
// *types.AppError with ErrCodeUpstreamGone when the target no longer exists.
type Sender interface {
	Send(ctx context.Context, sub types.PushSubscription, payload types.PushPayload) error
}

// Transport implements alerts.PushTransport.
type Transport struct {
	subs    SubscriptionStore
	senders map[types.SubscriptionKind]Sender
	logger  *slog.Logger
}

// NewTransport creates a Transport. senders maps each subscription kind to
// the Sender that handles it; subscriptions of an unmapped kind are skipped.
func NewTransport(subs SubscriptionStore, senders map[types.SubscriptionKind]Sender, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{subs: subs, senders: senders, logger: logger}
}

// Send delivers payload to every subscription the user has. It reports true
// when at least one subscription accepted the payload. Failures on individual
// subscriptions are logged; an error is returned only when nothing was
// delivered and at least one attempt failed for a reason other than the
// target being gone.
func (t *Transport) Send(ctx context.Context, userID string, payload types.PushPayload) (bool, error) {
	subs, err := t.subs.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list push subscriptions: %w", err)
	}
	logger := types.LoggerFromContext(ctx, t.logger)

	var (
		delivered bool
		errs      []error
	)
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		sender, ok := t.senders[sub.Kind]
		if !ok {
			logger.WarnContext(ctx, "no sender for subscription kind",
				"subscription_id", sub.ID,
				"kind", string(sub.Kind),
			)
			continue
		}

		err := sender.Send(ctx, sub, payload)
		switch {
		case err == nil:
			delivered = true
		case isGone(err):
			logger.InfoContext(ctx, "pruning gone push subscription",
				"subscription_id", sub.ID,
				"user_id", userID,
			)
			if delErr := t.subs.Delete(ctx, sub.ID); delErr != nil {
				logger.ErrorContext(ctx, "failed to prune push subscription",
					"subscription_id", sub.ID,
					"error", delErr,
				)
			}
		default:
			logger.WarnContext(ctx, "push delivery failed",
				"subscription_id", sub.ID,
				"kind", string(sub.Kind),
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	if delivered || len(errs) == 0 {
		return delivered, nil
	}
	return false, errors.Join(errs...)
}

func isGone(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeUpstreamGone
}
