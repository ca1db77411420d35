package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

// SessionStore is a mock implementation of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Create(ctx context.Context, session model.SessionRecord) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) FindValid(ctx context.Context, token string, now time.Time) (model.SessionRecord, error) {
	args := m.Called(ctx, token, now)
	return args.Get(0).(model.SessionRecord), args.Error(1)
}

func (m *SessionStore) FindByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]model.SessionRecord, error) {
	args := m.Called(ctx, ownerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionRecord), args.Error(1)
}

func (m *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (model.SessionRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.SessionRecord), args.Error(1)
}

func (m *SessionStore) RevokeOne(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *SessionStore) RevokeAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
