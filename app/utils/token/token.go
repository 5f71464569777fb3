// Package token issues and verifies the HS256 bearer tokens returned by
// /user/token/.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID  string `json:"user_id"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: secret, ttl: ttl}
}

func (m *Manager) Issue(userID string, isStaff bool) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("token: signing secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates signature, algorithm and expiry.
func (m *Manager) Parse(raw string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
