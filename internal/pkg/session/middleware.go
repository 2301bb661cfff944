package session

import (
	"context"
	"net/http"

	"vaultboard/internal/pkg/logx"
)

// Context key for the dev-session claims, preventing collisions with other packages.
type contextKey string

const (
	// ContextClaimsKey stores the parsed session Claims in the request context.
	ContextClaimsKey contextKey = "dev_session_claims"
)

// ExtractorMiddleware attempts to read and validate the dev-session cookie.
// It injects the Claims into the context on success and never interrupts the
// request: sessions without a valid token simply stay anonymous.
func ExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ParseToken(cookie.Value, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired dev-session token, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsPrivileged reports whether the request belongs to an unlocked dev session.
func IsPrivileged(r *http.Request) bool {
	claims, ok := r.Context().Value(ContextClaimsKey).(*Claims)

	return ok && claims.DevUnlocked
}
