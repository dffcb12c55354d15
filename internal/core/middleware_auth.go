package core

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"lightwatch/internal/types"
)

// CronAuth admits requests whose bearer token matches the configured bcrypt
// hash. With no hash configured every request is rejected.
func (s *Server) CronAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "a bearer token is required", nil))
			return
		}

		hash := s.Config.Server.CronTokenHash
		if hash.IsZero() {
			s.Logger.WarnContext(r.Context(), "trigger rejected, CRON_TOKEN_HASH is not configured")
			Error(w, r, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash.Unmask()), []byte(token)); err != nil {
			s.Logger.WarnContext(r.Context(), "trigger rejected, token mismatch",
				slog.String("path", r.URL.Path),
			)
			Error(w, r, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractBearerToken returns the token from an "Authorization: Bearer <t>"
// header. The scheme is matched case-insensitively.
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
