// Package auth resolves request identities. The identity provider itself
// is an external collaborator; this package is the explicitly
// constructed client injected into components that need identity,
// replacing any module-level singleton.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Identity resolves the authenticated user for a request.
// An empty owner id with ok == false means the request is anonymous.
type Identity interface {
	// UserFromRequest returns the owner id for the request, if any.
	UserFromRequest(r *http.Request) (string, bool)

	// Close releases provider resources.
	Close() error
}

type ctxKey struct{}

// WithOwner stores the owner id in the context.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

// OwnerFromContext returns the owner id stored by the auth middleware.
func OwnerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// TokenVerifier is a bearer-token identity for deployments where an
// upstream gateway has already validated the token and the subject is
// carried in a trusted header. Anonymous requests are permitted; route
// handlers decide whether identity is required.
type TokenVerifier struct {
	header string
}

// NewTokenVerifier constructs a verifier reading the given header
// (X-User-ID when empty).
func NewTokenVerifier(header string) *TokenVerifier {
	if header == "" {
		header = "X-User-ID"
	}
	return &TokenVerifier{header: header}
}

// UserFromRequest returns the trusted subject header, falling back to a
// bearer token subject of the form "Bearer user:<id>".
func (v *TokenVerifier) UserFromRequest(r *http.Request) (string, bool) {
	if owner := strings.TrimSpace(r.Header.Get(v.header)); owner != "" {
		return owner, true
	}
	authz := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(authz, "Bearer user:"); ok {
		if owner := strings.TrimSpace(after); owner != "" {
			return owner, true
		}
	}
	return "", false
}

// Close is a no-op for the header verifier.
func (v *TokenVerifier) Close() error {
	log.Debug().Msg("Identity verifier closed")
	return nil
}

// Middleware resolves the request identity once and stores it in the
// request context for handlers.
func Middleware(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if owner, ok := id.UserFromRequest(r); ok {
				r = r.WithContext(WithOwner(r.Context(), owner))
			}
			next.ServeHTTP(w, r)
		})
	}
}
