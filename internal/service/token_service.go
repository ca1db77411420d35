package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tokenkeeper/tokenkeeper/internal/logger"
	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

// TokenPair is the result of issuing a new session: both token strings,
// the id they share, and their nominal lifetimes.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenID          string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// TokenService owns the token lifecycle: issuance, verification, refresh,
// revocation and session listing. It composes the token manager, the
// durable session store and the blacklist cache; all coordination happens
// in those collaborators, the service itself keeps no mutable state.
type TokenService struct {
	manager model.TokenManager
	store   model.SessionStore
	cache   model.BlacklistCache
	logger  *logger.Logger
	now     func() time.Time
}

func NewTokenService(manager model.TokenManager, store model.SessionStore, cache model.BlacklistCache, logger *logger.Logger) *TokenService {
	return &TokenService{
		manager: manager,
		store:   store,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Issue mints an access/refresh pair sharing a fresh token id and records
// the refresh token as a session. A failed session write is logged and
// swallowed: the tokens stay usable, and verification never requires the
// durable record to exist.
func (s *TokenService) Issue(ctx context.Context, ownerID uuid.UUID, email string, device model.DeviceContext) (TokenPair, error) {
	tokenID := uuid.NewString()

	access, err := s.manager.GenerateAccessToken(ownerID, email, tokenID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(ownerID, email, tokenID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	now := s.now()
	session := model.SessionRecord{
		ID:         uuid.New(),
		Token:      refresh,
		OwnerID:    ownerID,
		UserAgent:  device.UserAgent,
		IPAddress:  device.IPAddress,
		DeviceName: device.DeviceName,
		ExpiresAt:  now.Add(s.manager.RefreshTTL()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Create(ctx, session); err != nil {
		s.logger.Error("failed to persist session record",
			"owner_id", ownerID,
			"token_id", tokenID,
			"error", err.Error())
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenID:          tokenID,
		AccessExpiresIn:  s.manager.AccessTTL(),
		RefreshExpiresIn: s.manager.RefreshTTL(),
	}, nil
}

// VerifyAccess validates an access token against the blacklist and its
// signature and expiry.
func (s *TokenService) VerifyAccess(ctx context.Context, tokenString string) (model.TokenClaims, error) {
	if s.cache.IsBlocked(ctx, tokenString) {
		return model.TokenClaims{}, model.ErrTokenBlacklisted
	}
	return s.manager.ParseAccessToken(tokenString)
}

// VerifyRefresh validates a refresh token against the blacklist, its
// signature and expiry, and the session store. The store check is
// advisory: a record that cannot be read, or was never written, does not
// fail verification. Revocation is enforced through the blacklist.
func (s *TokenService) VerifyRefresh(ctx context.Context, tokenString string) (model.TokenClaims, error) {
	if s.cache.IsBlocked(ctx, tokenString) {
		return model.TokenClaims{}, model.ErrTokenBlacklisted
	}

	claims, err := s.manager.ParseRefreshToken(tokenString)
	if err != nil {
		return model.TokenClaims{}, err
	}

	if _, err := s.store.FindValid(ctx, tokenString, s.now()); err != nil {
		s.logger.Warn("failed to validate session record, proceeding on signature",
			"owner_id", claims.UserID,
			"token_id", claims.TokenID,
			"error", err.Error())
	}

	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token carrying
// the same token id, owner and email. The refresh token itself is neither
// rotated nor invalidated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	access, err := s.manager.GenerateAccessToken(claims.UserID, claims.Email, claims.TokenID)
	if err != nil {
		return "", fmt.Errorf("issue new access: %w", err)
	}

	return access, nil
}

// Revoke durably revokes a refresh token, then blacklists it for the
// refresh TTL window. Durable first: a token the cache rejects must never
// be one the store still reports valid while no durable revoke happened.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.store.RevokeOne(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if err := s.cache.Block(ctx, refreshToken, s.manager.RefreshTTL()); err != nil {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}
	return nil
}

// RevokeAll revokes every valid session of the owner and blacklists each
// token individually. A failed blacklist write for one token does not
// stop the others; failures are joined and reported together.
func (s *TokenService) RevokeAll(ctx context.Context, ownerID uuid.UUID) error {
	sessions, err := s.store.FindByOwner(ctx, ownerID, s.now())
	if err != nil {
		return fmt.Errorf("list sessions for revoke: %w", err)
	}

	if err := s.store.RevokeAllForOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	var errs []error
	for _, session := range sessions {
		if err := s.cache.Block(ctx, session.Token, s.manager.RefreshTTL()); err != nil {
			errs = append(errs, fmt.Errorf("blacklist session %s: %w", session.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RevokeAccessToken blacklists an access token for the access TTL window.
// Access tokens are not durably tracked, so the cache is the only step.
func (s *TokenService) RevokeAccessToken(ctx context.Context, accessToken string) error {
	if err := s.cache.Block(ctx, accessToken, s.manager.AccessTTL()); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	return nil
}

// ListSessions returns the owner's valid sessions, newest first, without
// token strings.
func (s *TokenService) ListSessions(ctx context.Context, ownerID uuid.UUID) ([]model.SessionView, error) {
	sessions, err := s.store.FindByOwner(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	views := make([]model.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, session.View())
	}
	return views, nil
}

// RevokeSession revokes one session by its storage id after checking it
// belongs to ownerID. A mismatched owner is a hard rejection.
func (s *TokenService) RevokeSession(ctx context.Context, ownerID uuid.UUID, sessionID uuid.UUID) error {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}

	if session.OwnerID != ownerID {
		return model.ErrForbidden
	}

	return s.Revoke(ctx, session.Token)
}
