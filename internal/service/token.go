package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/taskboard/internal/domain"
)

// TokenIssuer mints bearer tokens for users and resolves them back to a user ID.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
	// Subject returns the user ID carried by token, or "" if the token is unusable.
	Subject(token string) string
}

// MockTokens issues the unsigned "mock-token-<id>" tokens of the mock API.
// Anyone can forge them; use JWTTokens outside of development.
type MockTokens struct{}

func (MockTokens) Issue(user domain.User) (string, error) {
	return "mock-token-" + user.ID, nil
}

// Subject returns the third "-" separated segment of token.
func (MockTokens) Subject(token string) string {
	parts := strings.Split(token, "-")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// JWTTokens issues HS256-signed JWTs whose sub claim is the user ID.
type JWTTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokens creates a JWT issuer. A non-positive ttl defaults to 24 hours.
func NewJWTTokens(secret string, ttl time.Duration) *JWTTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokens{secret: []byte(secret), ttl: ttl}
}

func (j *JWTTokens) Issue(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (j *JWTTokens) Subject(tokenString string) string {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	return claims.Subject
}
