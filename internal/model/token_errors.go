package model

import "errors"

var (
	// ErrTokenExpired means the token's expiry claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed means the token failed structural or signature checks.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrWrongTokenClass means an access token was presented where a refresh
	// token is required, or the reverse.
	ErrWrongTokenClass = errors.New("wrong token class")
	// ErrTokenBlacklisted means the token was revoked before its expiry.
	ErrTokenBlacklisted = errors.New("token blacklisted")

	// ErrNotFound means the requested record does not exist, is revoked,
	// or is expired; the three are indistinguishable to validity lookups.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the record exists but belongs to another owner.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a record with the same token already exists.
	ErrConflict = errors.New("already exists")

	// ErrCacheUnavailable means a blacklist write could not be performed.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
