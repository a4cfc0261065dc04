package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"clinicd/m/domain"
)

// Token types carried in the claims so a refresh token can never pass
// as an access token.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

const (
	accessTTL  = time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims are the JWT claims issued for both token types.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 tokens and consults the revocation
// store on every verification.
type Manager struct {
	secret  []byte
	revoked RevocationStore
}

// NewManager constructs a Manager.
func NewManager(secret string, revoked RevocationStore) *Manager {
	return &Manager{secret: []byte(secret), revoked: revoked}
}

func (m *Manager) issue(user domain.User, tokenType string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// IssueAccess creates a short-lived access token.
func (m *Manager) IssueAccess(user domain.User) (string, error) {
	return m.issue(user, TokenAccess, accessTTL)
}

// IssuePair creates an access token and a long-lived refresh token.
func (m *Manager) IssuePair(user domain.User) (access, refresh string, err error) {
	if access, err = m.issue(user, TokenAccess, accessTTL); err != nil {
		return "", "", err
	}
	if refresh, err = m.issue(user, TokenRefresh, refreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify parses and validates a token of the wanted type, rejecting
// revoked tokens.
func (m *Manager) Verify(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke marks the token behind claims as invalid for its remaining
// lifetime.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	return m.revoked.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
