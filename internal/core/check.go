package core

import (
	"context"
	"errors"
	"net/http"

	"lightwatch/internal/alerts"
	"lightwatch/internal/types"
)

// HandleCheck runs one evaluation cycle. The body is optional; when present it
// may pin reference_time and request verbose outcomes.
//
// A cycle that was interrupted by the request deadline still reports what it
// finished, with a 504 status.
func (s *Server) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var in alerts.InvocationInput
	if err := DecodeJSON(w, r, &in, true); err != nil {
		Error(w, r, err)
		return
	}

	res, err := s.Runner.Invoke(r.Context(), in)
	switch {
	case err == nil:
		JSON(w, r, http.StatusOK, APIResponse{Data: res})
	case errors.Is(err, alerts.ErrCycleInProgress):
		Error(w, r, types.NewAppError(types.ErrCodeConflictCycleRunning, "an evaluation cycle is already running", err))
	case errors.Is(err, context.DeadlineExceeded) && res != nil && res.CycleID != "":
		s.Logger.WarnContext(r.Context(), "triggered cycle hit the request deadline",
			"cycle_id", res.CycleID,
			"checked", res.Checked,
		)
		JSON(w, r, http.StatusGatewayTimeout, APIResponse{Data: res})
	default:
		s.Logger.ErrorContext(r.Context(), "triggered cycle failed", "error", err)
		Error(w, r, err)
	}
}
