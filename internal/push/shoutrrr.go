package push

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"lightwatch/internal/types"
)

// router is the subset of *router.ServiceRouter the sender uses.
type router interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrSender delivers through a shoutrrr service URL stored as the
// subscription target.
type ShoutrrrSender struct {
	timeout   time.Duration
	newRouter func(url string, timeout time.Duration) (router, error)
}

// NewShoutrrrSender creates a ShoutrrrSender. A positive timeout bounds each
// delivery.
func NewShoutrrrSender(timeout time.Duration) *ShoutrrrSender {
	return &ShoutrrrSender{timeout: timeout, newRouter: newServiceRouter}
}

func newServiceRouter(url string, timeout time.Duration) (router, error) {
	sr, err := shoutrrr.CreateSender(url)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		sr.Timeout = timeout
	}
	sr.SetLogger(log.New(io.Discard, "", 0))
	return sr, nil
}

// Send implements Sender. The service URL usually embeds a token, so errors
// never echo it.
func (s *ShoutrrrSender) Send(ctx context.Context, sub types.PushSubscription, payload types.PushPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := s.newRouter(sub.Target.Unmask(), s.timeout)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamGone, "shoutrrr url is not usable", nil).
			WithDetails(map[string]any{"subscription_id": sub.ID})
	}

	params := stypes.Params{}
	params.SetTitle(payload.Title)
	if payload.URL != "" {
		params["url"] = payload.URL
	}

	if errs := r.Send(payload.Body, &params); len(errs) > 0 {
		if err := errors.Join(errs...); err != nil {
			return types.NewAppError(types.ErrCodeUpstreamPush, "shoutrrr delivery failed", err)
		}
	}
	return nil
}
