package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenClass distinguishes the two token kinds minted as a pair.
type TokenClass string

const (
	// TokenClassAccess is the short-lived per-request credential.
	TokenClassAccess TokenClass = "access"
	// TokenClassRefresh is the long-lived, durably tracked credential.
	TokenClassRefresh TokenClass = "refresh"
)

// TokenClaims is the verified payload carried inside a signed token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	Class     TokenClass
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager mints and verifies signed token strings. Each class is
// signed with its own secret, so one leaked secret cannot forge the
// other class.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, email string, tokenID string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, email string, tokenID string) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// BlacklistCache rejects tokens ahead of their natural expiry. Absence of
// an entry proves nothing; presence means revoked. IsBlocked fails open on
// cache unavailability, Block does not.
type BlacklistCache interface {
	Block(ctx context.Context, token string, ttl time.Duration) error
	IsBlocked(ctx context.Context, token string) bool
}
