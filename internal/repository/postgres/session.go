package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

const uniqueViolation = "23505"

type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, token, owner_id, user_agent, ip_address, device_name, revoked, expires_at, created_at, updated_at"

func (r *SessionRepository) Create(ctx context.Context, session model.SessionRecord) error {
	const query = `
        INSERT INTO sessions (
            id, token, owner_id, user_agent, ip_address, device_name, revoked, expires_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		session.ID, session.Token, session.OwnerID, session.UserAgent, session.IPAddress,
		session.DeviceName, session.Revoked, session.ExpiresAt, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindValid returns the record only while it is unrevoked and unexpired;
// a revoked or expired record is indistinguishable from an absent one.
func (r *SessionRepository) FindValid(ctx context.Context, token string, now time.Time) (model.SessionRecord, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM sessions WHERE token = $1 AND revoked = FALSE AND expires_at > $2
    `
	var s model.SessionRecord
	err := r.db.QueryRow(ctx, query, token, now).Scan(
		&s.ID, &s.Token, &s.OwnerID, &s.UserAgent, &s.IPAddress,
		&s.DeviceName, &s.Revoked, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SessionRecord{}, model.ErrNotFound
		}
		return model.SessionRecord{}, fmt.Errorf("failed to find valid session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]model.SessionRecord, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM sessions WHERE owner_id = $1 AND revoked = FALSE AND expires_at > $2
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions by owner: %w", err)
	}
	defer rows.Close()

	var sessions []model.SessionRecord
	for rows.Next() {
		var s model.SessionRecord
		if err := rows.Scan(
			&s.ID, &s.Token, &s.OwnerID, &s.UserAgent, &s.IPAddress,
			&s.DeviceName, &s.Revoked, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetByID returns the record regardless of its validity. Callers doing
// session revocation need revoked and expired records too.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.SessionRecord, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM sessions WHERE id = $1
    `
	var s model.SessionRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Token, &s.OwnerID, &s.UserAgent, &s.IPAddress,
		&s.DeviceName, &s.Revoked, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SessionRecord{}, model.ErrNotFound
		}
		return model.SessionRecord{}, fmt.Errorf("failed to get session by id: %w", err)
	}
	return s, nil
}

// RevokeOne is idempotent: revoking an already revoked or absent token
// affects zero rows and is not an error.
func (r *SessionRepository) RevokeOne(ctx context.Context, token string) error {
	const query = `
        UPDATE sessions SET revoked = TRUE, updated_at = NOW()
        WHERE token = $1 AND revoked = FALSE
    `
	if _, err := r.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	const query = `
        UPDATE sessions SET revoked = TRUE, updated_at = NOW()
        WHERE owner_id = $1 AND revoked = FALSE
    `
	if _, err := r.db.Exec(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to revoke sessions by owner: %w", err)
	}
	return nil
}

// PurgeExpired deletes every record past its expiry, revoked or not.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < $1`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
