package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a session token
const DefaultTokenTTL = time.Hour

// TokenManager handles JWT token generation and validation.
// Tokens are stateless: there is no revocation and rotating the secret
// invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// IssueToken creates a signed session token for the identity
func (tm *TokenManager) IssueToken(identity models.Identity) (string, error) {
	if identity.UserID == "" {
		return "", fmt.Errorf("cannot issue token without user id")
	}

	issuedAt := tm.now()
	claims := &models.TokenClaims{
		UserID: identity.UserID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token and returns the identity it asserts.
// Every failure wraps models.ErrInvalidToken.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.Identity, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}

	return &models.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
