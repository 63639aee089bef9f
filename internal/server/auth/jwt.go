// Package auth issues and verifies the stateless bearer tokens used by the
// HTTP API and carries the resolved caller through request contexts.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// JWTSecretSetting names the setting that carries the signing key.
const JWTSecretSetting = "SECUREPASS_JWT_SECRET"

// MinSecretLen is the minimum HMAC key length in bytes (256 bits).
const MinSecretLen = 32

// TokenService mints and checks HS256 tokens with claims {sub, iat, exp}.
// It keeps no per-token state; a token lives until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService refuses a missing, placeholder or too short secret.
func NewTokenService(secret []byte, ttl time.Duration, dev bool) (*TokenService, error) {
	trimmed := strings.TrimSpace(string(secret))
	if trimmed == "" || trimmed == common.PlaceholderSecret {
		return nil, &common.ConfigError{Setting: JWTSecretSetting, Reason: "value is empty or a placeholder", Dev: dev}
	}
	if len(secret) < MinSecretLen {
		return nil, &common.ConfigError{
			Setting: JWTSecretSetting,
			Reason:  fmt.Sprintf("must be at least %d bytes (got %d bytes)", MinSecretLen, len(secret)),
			Dev:     dev,
		}
	}
	if ttl <= 0 {
		return nil, &common.ConfigError{Setting: "SECUREPASS_TOKEN_TTL", Reason: "must be positive", Dev: dev}
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenService{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL reports the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the subject of a valid token. Any failure, whether a bad
// signature, a malformed token, a foreign algorithm or expiry, collapses into
// common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
