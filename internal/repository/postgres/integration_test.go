//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tokenkeeper/tokenkeeper/internal/model"
	repo "github.com/tokenkeeper/tokenkeeper/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "tokenkeeper_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/tokenkeeper_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newSession(ownerID uuid.UUID, token string, expiresAt time.Time) model.SessionRecord {
	now := time.Now()
	return model.SessionRecord{
		ID:         uuid.New(),
		Token:      token,
		OwnerID:    ownerID,
		UserAgent:  "integration-test",
		DeviceName: "ci",
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestSessionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	r := repo.NewSessionRepository(conn)
	now := time.Now()
	ownerID := uuid.New()

	t.Run("create_and_find_valid", func(t *testing.T) {
		s := newSession(ownerID, "it-refresh-1", now.Add(time.Hour))
		require.NoError(t, r.Create(ctx, s))

		got, err := r.FindValid(ctx, s.Token, now)
		require.NoError(t, err)
		require.Equal(t, s.ID, got.ID)
		require.Equal(t, ownerID, got.OwnerID)

		require.ErrorIs(t, r.Create(ctx, s), model.ErrConflict)
	})

	t.Run("revoke_hides_from_find_valid", func(t *testing.T) {
		s := newSession(ownerID, "it-refresh-2", now.Add(time.Hour))
		require.NoError(t, r.Create(ctx, s))

		require.NoError(t, r.RevokeOne(ctx, s.Token))
		_, err := r.FindValid(ctx, s.Token, now)
		require.ErrorIs(t, err, model.ErrNotFound)

		// Still reachable by id for session revocation.
		got, err := r.GetByID(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, got.Revoked)

		// Idempotent.
		require.NoError(t, r.RevokeOne(ctx, s.Token))
	})

	t.Run("expired_hides_from_find_valid", func(t *testing.T) {
		s := newSession(ownerID, "it-refresh-3", now.Add(-time.Minute))
		require.NoError(t, r.Create(ctx, s))

		_, err := r.FindValid(ctx, s.Token, now)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("find_by_owner_newest_first", func(t *testing.T) {
		other := uuid.New()
		first := newSession(other, "it-owner-1", now.Add(time.Hour))
		first.CreatedAt = now.Add(-2 * time.Hour)
		second := newSession(other, "it-owner-2", now.Add(time.Hour))
		second.CreatedAt = now.Add(-time.Hour)
		require.NoError(t, r.Create(ctx, first))
		require.NoError(t, r.Create(ctx, second))

		got, err := r.FindByOwner(ctx, other, now)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, second.Token, got[0].Token)
		require.Equal(t, first.Token, got[1].Token)
	})

	t.Run("revoke_all_for_owner", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, r.Create(ctx, newSession(other, "it-all-1", now.Add(time.Hour))))
		require.NoError(t, r.Create(ctx, newSession(other, "it-all-2", now.Add(time.Hour))))

		require.NoError(t, r.RevokeAllForOwner(ctx, other))

		got, err := r.FindByOwner(ctx, other, now)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("purge_expired", func(t *testing.T) {
		other := uuid.New()
		expired := newSession(other, "it-purge-1", now.Add(-time.Hour))
		revokedNotExpired := newSession(other, "it-purge-2", now.Add(time.Hour))
		require.NoError(t, r.Create(ctx, expired))
		require.NoError(t, r.Create(ctx, revokedNotExpired))
		require.NoError(t, r.RevokeOne(ctx, revokedNotExpired.Token))

		count, err := r.PurgeExpired(ctx, now)
		require.NoError(t, err)
		require.GreaterOrEqual(t, count, int64(1))

		// Expired gone, revoked-but-not-expired stays.
		_, err = r.GetByID(ctx, expired.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
		_, err = r.GetByID(ctx, revokedNotExpired.ID)
		require.NoError(t, err)

		// A second purge at the same instant removes nothing more.
		count, err = r.PurgeExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, int64(0), count)
	})
}
