package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lightwatch/internal/types"
)

func TestJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, APIResponse{Data: map[string]int{"checked": 4}})

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"checked":4}}` {
		t.Errorf("body = %s", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestError_MapsAppErrorCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil), http.StatusUnauthorized, "auth_token_invalid"},
		{types.NewAppError(types.ErrCodeConflictCycleRunning, "busy", nil), http.StatusConflict, "conflict_cycle_in_progress"},
		{types.NewAppError(types.ErrCodeUpstreamWeather, "weather down", nil), http.StatusBadGateway, "upstream_weather_unavailable"},
		{errors.New("raw"), http.StatusInternalServerError, "internal_unexpected_error"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
		rec := httptest.NewRecorder()
		Error(rec, req, tt.err)

		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		var resp APIErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error.Code != tt.code || resp.Error.RequestID != "req-1" {
			t.Errorf("%v: got %+v", tt.err, resp.Error)
		}
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	var dst struct{ Verbose bool }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst, true); err != nil {
		t.Errorf("allowEmpty: unexpected error %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSON(httptest.NewRecorder(), req, &dst, false)
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationInvalidRequest {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	var dst map[string]string
	body := `{"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	err := DecodeJSON(httptest.NewRecorder(), req, &dst, false)
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Message != "request body is too large" {
		t.Errorf("expected size error, got %v", err)
	}
}
