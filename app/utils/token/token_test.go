package token_test

import (
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := token.NewManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)

	raw, err := m.Issue("user-1", true)
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.IsStaff)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := token.NewManager([]byte("secret-a"), time.Hour).Issue("user-1", false)
	require.NoError(t, err)

	_, err = token.NewManager([]byte("secret-b"), time.Hour).Parse(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	claims := token.Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = token.NewManager(secret, time.Hour).Parse(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := token.NewManager(nil, time.Hour).Issue("user-1", false)
	assert.Error(t, err)
}
