package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokens(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.ErrorIs(t, err, ErrSecretMissing)

	tok, err := NewTokens("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, tok.ttl)
}

func TestTokens_IssueAndParse(t *testing.T) {
	tok, err := NewTokens("secret", time.Hour)
	require.NoError(t, err)

	signed, claims, err := tok.Issue("u1", "admin", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := tok.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.UserID)
	assert.Equal(t, "admin", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)

	_, second, err := tok.Issue("u1", "admin", "admin")
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, second.ID)
}

func TestTokens_ParseRejects(t *testing.T) {
	tok, err := NewTokens("secret", time.Hour)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := tok.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewTokens("other", time.Hour)
		signed, _, err := other.Issue("u1", "admin", "admin")
		require.NoError(t, err)

		_, err = tok.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past, _ := NewTokens("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		signed, _, err := past.Issue("u1", "admin", "admin")
		require.NoError(t, err)

		_, err = tok.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
			UserID:           "u1",
			RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tok.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}
