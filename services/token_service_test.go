package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret", 24)

	token, err := service.Generate(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := service.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", 24)
	verifier := NewTokenService("secret-b", 24)

	token, err := issuer.Generate(1)
	assert.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	service := NewTokenService("test-secret", 24)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := service.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, token)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	service := NewTokenService("test-secret", 24)

	// Hand-craft a token that expired an hour ago, signed with the same
	// secret
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = service.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	service := NewTokenService("test-secret", 24)

	// alg=none tokens must never verify
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = service.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpireHoursDefault(t *testing.T) {
	service := NewTokenService("test-secret", 0)
	assert.Equal(t, 24*time.Hour, service.expiry)
}
