package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vimmo/listingrank/internal/config"
	"github.com/vimmo/listingrank/internal/logger"
)

// CorrelationMiddleware assigns each request a correlation id and puts it on
// the request context for logging.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware validates the shared secret header when auth is enabled
type AuthMiddleware struct {
	config *config.Config
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// Middleware validates the X-Shared-Secret header
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Auth.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		providedSecret := r.Header.Get("X-Shared-Secret")

		if providedSecret == "" {
			logger.Warn(r.Context(), "Authentication failed: missing X-Shared-Secret header")
			respondError(w, http.StatusUnauthorized, "missing authentication header")
			return
		}

		if providedSecret != m.config.Auth.SharedSecret {
			logger.Warn(r.Context(), "Authentication failed: invalid shared secret")
			respondError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware recovers from handler panics and returns 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(r.Context(), "Panic recovered", "panic", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
