package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

// Claims represents JWT claims with token class, user ID and email. The
// pair identifier shared by an access/refresh pair travels in the
// registered "jti" claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	TokenType string    `json:"typ"`
}

// Config carries signing material and token lifetimes. Now is the clock
// used for issuance and expiry validation; it defaults to time.Now.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// JWT implements TokenManager backed by symmetric HMAC, one secret per
// token class.
type JWT struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWT creates a new JWT token manager from the provided config.
func NewJWT(cfg Config) model.TokenManager {
	j := &JWT{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           cfg.Now,
	}
	if j.accessTTL <= 0 {
		j.accessTTL = defaultAccessTTL
	}
	if j.refreshTTL <= 0 {
		j.refreshTTL = defaultRefreshTTL
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j
}

// AccessTTL returns the nominal access token lifetime.
func (j *JWT) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL returns the nominal refresh token lifetime.
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

// GenerateAccessToken creates a short-lived access token carrying tokenID.
func (j *JWT) GenerateAccessToken(userID uuid.UUID, email string, tokenID string) (string, error) {
	return j.generate(j.accessSecret, model.TokenClassAccess, j.accessTTL, userID, email, tokenID)
}

// GenerateRefreshToken creates a long-lived refresh token carrying tokenID.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID, email string, tokenID string) (string, error) {
	return j.generate(j.refreshSecret, model.TokenClassRefresh, j.refreshTTL, userID, email, tokenID)
}

// ParseAccessToken validates an access token and extracts its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, model.TokenClassAccess, j.accessSecret)
}

// ParseRefreshToken validates a refresh token and extracts its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, model.TokenClassRefresh, j.refreshSecret)
}

func (j *JWT) generate(secret []byte, class model.TokenClass, ttl time.Duration, userID uuid.UUID, email string, tokenID string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Email:     email,
		TokenType: string(class),
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", class, err)
	}

	return tokenString, nil
}

func (j *JWT) parse(tokenString string, class model.TokenClass, secret []byte) (model.TokenClaims, error) {
	// The class claim is read from the unverified decode first, so that a
	// token of the other class is rejected as a class mismatch rather than
	// a signature failure. Nothing is accepted before the signature check
	// below.
	decoded := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, decoded); err != nil {
		return model.TokenClaims{}, fmt.Errorf("%w: %s", model.ErrTokenMalformed, err)
	}
	if decoded.TokenType != string(class) {
		return model.TokenClaims{}, fmt.Errorf("%w: got %q, want %q", model.ErrWrongTokenClass, decoded.TokenType, class)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.TokenClaims{}, fmt.Errorf("%w: %s", model.ErrTokenExpired, err)
		}
		return model.TokenClaims{}, fmt.Errorf("%w: %s", model.ErrTokenMalformed, err)
	}
	if !token.Valid {
		return model.TokenClaims{}, fmt.Errorf("%w: %s token is invalid", model.ErrTokenMalformed, class)
	}

	return claims.toModel(), nil
}

// Decode extracts claims without verifying the signature. It exists for
// logging and diagnostics only and must never gate acceptance.
func Decode(tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return model.TokenClaims{}, fmt.Errorf("%w: %s", model.ErrTokenMalformed, err)
	}
	return claims.toModel(), nil
}

func (c *Claims) toModel() model.TokenClaims {
	tc := model.TokenClaims{
		UserID:  c.UserID,
		Email:   c.Email,
		Class:   model.TokenClass(c.TokenType),
		TokenID: c.ID,
	}
	if c.IssuedAt != nil {
		tc.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		tc.ExpiresAt = c.ExpiresAt.Time
	}
	return tc
}
