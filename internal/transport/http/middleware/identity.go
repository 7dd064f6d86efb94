package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-payments-api/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier is the identity backend as seen by the middleware.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Identity, error)
}

// Identity returns middleware implementing the three-way credential result:
//
//   - no Authorization header, or one that isn't a Bearer scheme → the request
//     proceeds anonymously (deliberately identical, so probes can't tell a
//     missing header from a malformed one);
//   - a presented credential that fails verification for a classified reason
//     → 401 with a machine-readable code, the request never reaches handlers;
//   - any other verifier failure → logged and degraded to anonymous, so an
//     identity-infrastructure outage never blocks anonymous browsing.
//
// Routes that require a verified identity must additionally use RequireIdentity.
func Identity(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			rawToken := strings.TrimPrefix(authHeader, "Bearer ")

			ident, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				var authErr *domain.AuthError
				if errors.As(err, &authErr) {
					slog.Info("credential rejected", "code", authErr.Code)
					writeAuthError(w, authErr)
					return
				}
				slog.Warn("identity verification degraded to anonymous", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			slog.Info("identity verified", "subject_id", ident.SubjectID)
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that reached the handler anonymously.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext extracts the verified identity from the request context.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*domain.Identity)
	return ident, ok
}
