package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// PrincipalContextKey is the context key for the authenticated caller
	PrincipalContextKey ContextKey = "principal"

	// PrincipalHeader names the caller when token auth is disabled.
	PrincipalHeader = "X-Principal"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate resolves the caller principal. With a verifier the caller
// comes from a bearer token; without one the X-Principal header is trusted.
// Requests without credentials continue anonymously.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolvePrincipal(r, verifier)
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrorCode(err), err.Error())
				return
			}
			if principal == "" {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func resolvePrincipal(r *http.Request, verifier TokenVerifier) (string, error) {
	if verifier == nil {
		principal := strings.TrimSpace(r.Header.Get(PrincipalHeader))
		if principal == "" {
			return "", nil
		}
		if err := domain.ValidatePrincipal(principal); err != nil {
			return "", err
		}
		return principal, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", domain.ErrInvalidToken
	}

	claims, err := verifier.Verify(parts[1])
	if err != nil {
		if errors.Is(err, domain.ErrExpiredToken) {
			return "", domain.ErrExpiredToken
		}
		return "", domain.ErrInvalidToken
	}
	return claims.Principal, nil
}

// RequirePrincipal rejects anonymous requests.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, domain.ErrorCode(domain.ErrUnauthorized), "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal returns ctx carrying the caller principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated caller from context
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(PrincipalContextKey).(string)
	return principal, ok && principal != ""
}
