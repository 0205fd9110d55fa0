package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"scribed/internal/requestcontext"
	"scribed/internal/token"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and populates the
// request context with the actor identity and granted scopes.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithActor(ctx, claims.Subject)
			ctx = requestcontext.WithScopes(ctx, claims.Scopes())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
