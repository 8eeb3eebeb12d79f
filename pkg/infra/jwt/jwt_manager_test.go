package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndDecode(t *testing.T) {
	m := NewJwtManager("s3cr3t")

	token, err := m.CreateToken("admin", time.Hour)
	require.NoError(t, err)

	claims, err := m.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NoError(t, m.ValidateToken(token))
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewJwtManager("s3cr3t").(*manager)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.CreateToken("admin", time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.ErrorIs(t, m.ValidateToken(token), ErrExpiredToken)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewJwtManager("other").CreateToken("admin", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, NewJwtManager("s3cr3t").ValidateToken(token), ErrInvalidToken)
}

func TestManager_RejectsUnexpectedIssuer(t *testing.T) {
	claims := gojwt.RegisteredClaims{Issuer: "someone-else"}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s3cr3t"))
	require.NoError(t, err)

	assert.ErrorIs(t, NewJwtManager("s3cr3t").ValidateToken(token), ErrInvalidToken)
}

func TestManager_NoSecret(t *testing.T) {
	m := NewJwtManager("")

	_, err := m.CreateToken("admin", 0)
	assert.ErrorIs(t, err, ErrNoSecret)
	assert.ErrorIs(t, m.ValidateToken("abc"), ErrNoSecret)
}
