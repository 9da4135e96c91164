package middleware

import (
	"net/http"

	"github.com/bryanspearman/event-listener-server/internal/api/apierr"
	"github.com/bryanspearman/event-listener-server/internal/auth"
)

// RequireAuth verifies the bearer token and stores the caller's principal in
// the request context. Every failure mode gets the same 401 body; the
// distinction lives only in the logs.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				apierr.Unauthorized(w, r, "Unauthorized", err)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				apierr.Unauthorized(w, r, "Unauthorized", err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
