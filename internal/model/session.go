package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines persistence operations for refresh-token sessions.
// Time-dependent lookups take the evaluation instant explicitly so that
// expiry logic stays deterministic under an injected clock.
type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	FindValid(ctx context.Context, token string, now time.Time) (SessionRecord, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]SessionRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (SessionRecord, error)
	RevokeOne(ctx context.Context, token string) error
	RevokeAllForOwner(ctx context.Context, ownerID uuid.UUID) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRecord is one issued refresh token: one logged-in device/context
// for a principal. The raw token string is the unique lookup key; Revoked
// only ever transitions false to true.
type SessionRecord struct {
	ID         uuid.UUID
	Token      string
	OwnerID    uuid.UUID
	UserAgent  string
	IPAddress  string
	DeviceName string
	Revoked    bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Valid reports whether the record is usable at the given instant.
func (s SessionRecord) Valid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// DeviceContext carries optional client metadata captured at issuance.
type DeviceContext struct {
	UserAgent  string
	IPAddress  string
	DeviceName string
}

// SessionView is the caller-facing projection of a session record.
// It never exposes the token string.
type SessionView struct {
	ID         uuid.UUID
	UserAgent  string
	IPAddress  string
	DeviceName string
	CreatedAt  time.Time
}

// View projects the record for session listings.
func (s SessionRecord) View() SessionView {
	return SessionView{
		ID:         s.ID,
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		DeviceName: s.DeviceName,
		CreatedAt:  s.CreatedAt,
	}
}
