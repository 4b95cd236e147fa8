package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier resolves a bearer credential to a user identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

// TokenIssuer mints a bearer credential bound to a user identity.
type TokenIssuer interface {
	IssueToken(userID int64) (string, error)
}

// JWTAuthority issues and verifies HMAC-signed bearer tokens.
type JWTAuthority struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTAuthority builds a JWTAuthority from the shared secret.
func NewJWTAuthority(secret string, ttl time.Duration) *JWTAuthority {
	return &JWTAuthority{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token whose subject is the user id.
func (a *JWTAuthority) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses and validates the token and returns the bound user id.
// Malformed, expired, or foreign-signed tokens all fail with ErrInvalidToken.
func (a *JWTAuthority) Verify(_ context.Context, token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
