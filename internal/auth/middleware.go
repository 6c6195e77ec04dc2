package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/workout-tracker/internal/models"
	pkghttp "github.com/BradenHooton/workout-tracker/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the caller identity in context
	UserContextKey contextKey = "user"
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.Identity, error)
}

// AuthMiddleware admits requests carrying a valid bearer token and stores the
// asserted identity in context. A missing header answers 401 with an empty body;
// any other failure answers 401 "Invalid token".
func AuthMiddleware(tv TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteEmpty(w, http.StatusUnauthorized)
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Invalid token")
				return
			}

			identity, err := tv.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, UserContextKey, identity)
}

// GetIdentityFromContext extracts the caller identity from request context
func GetIdentityFromContext(r *http.Request) *models.Identity {
	identity, ok := r.Context().Value(UserContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
