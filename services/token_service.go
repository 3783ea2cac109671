package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors surfaced to the auth middleware.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenService issues and verifies the HMAC-signed bearer tokens used by the
// API. Tokens carry the user id as the subject claim.
type TokenService struct {
	secret string
	expiry time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
// expireHours controls token lifetime.
func NewTokenService(secret string, expireHours int) *TokenService {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &TokenService{
		secret: secret,
		expiry: time.Duration(expireHours) * time.Hour,
	}
}

// Generate issues a signed token for the given user id.
func (s *TokenService) Generate(userID uint) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(s.expiry).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates a token string and returns the user id it was issued for.
func (s *TokenService) Verify(tokenString string) (uint, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}

	return uint(userID), nil
}
