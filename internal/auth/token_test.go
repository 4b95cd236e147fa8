package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	authority := NewJWTAuthority("secret", time.Hour)

	token, err := authority.IssueToken(42)
	require.NoError(t, err)

	userID, err := authority.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	authority := NewJWTAuthority("secret", -time.Minute)

	token, err := authority.IssueToken(42)
	require.NoError(t, err)

	_, err = authority.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := NewJWTAuthority("secret-a", time.Hour)
	verifier := NewJWTAuthority("secret-b", time.Hour)

	token, err := issuer.IssueToken(42)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	authority := NewJWTAuthority("secret", time.Hour)

	_, err := authority.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
