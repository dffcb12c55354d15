package push

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"lightwatch/internal/external"
	"lightwatch/internal/types"
)

// WebhookSender POSTs the payload as JSON to the subscription target. When
// the subscription carries a secret the body is signed.
type WebhookSender struct {
	client *external.BaseClient
	clock  types.Clock
}

// NewWebhookSender creates a WebhookSender. A nil clock uses the real clock.
func NewWebhookSender(client *external.BaseClient, clock types.Clock) *WebhookSender {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &WebhookSender{client: client, clock: clock}
}

// Send implements Sender.
func (s *WebhookSender) Send(ctx context.Context, sub types.PushSubscription, payload types.PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode push payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Target.Unmask(), bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamPush, "invalid webhook target", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !sub.Secret.IsZero() {
		sig, err := Sign(body, sub.Secret.Unmask(), s.clock.Now())
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to sign webhook", err)
		}
		req.Header.Set(SignatureHeader, sig)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return external.StatusError(resp, types.ErrCodeUpstreamPush, "webhook")
	}
	return nil
}
