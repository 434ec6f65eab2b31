package credential

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpired(t *testing.T) {
	assert.False(t, TokenExpired(signedToken(t, time.Now().Add(time.Hour))))
	assert.True(t, TokenExpired(signedToken(t, time.Now().Add(-time.Hour))))
}

func TestUndecodableTokensAreExpired(t *testing.T) {
	assert.True(t, TokenExpired(""))
	assert.True(t, TokenExpired("not-a-jwt"))
	assert.True(t, TokenExpired("a.b.c"))
}

func TestTokenWithoutExpIsExpired(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.True(t, TokenExpired(signed))
}
