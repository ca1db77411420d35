package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// BlacklistCache is a mock implementation of model.BlacklistCache.
type BlacklistCache struct {
	mock.Mock
}

func (m *BlacklistCache) Block(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *BlacklistCache) IsBlocked(ctx context.Context, token string) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}
