// Package auth issues and parses the bearer tokens used by the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// ErrInvalidToken is returned when a token cannot be parsed or verified.
var ErrInvalidToken = errors.New("invalid token")

// Manager signs and verifies HS256 tokens carrying a principal.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. A zero ttl defaults to 24 hours.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

type claims struct {
	Admin bool   `json:"adm,omitempty"`
	Theme string `json:"thm,omitempty"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for the principal.
func (m *Manager) Issue(p simpleblog.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin: p.Admin,
		Theme: p.Theme,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns the principal it carries.
func (m *Manager) Parse(tokenString string) (simpleblog.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return simpleblog.Principal{}, ErrInvalidToken
	}
	if c.Subject == "" {
		return simpleblog.Principal{}, ErrInvalidToken
	}

	return simpleblog.Principal{
		ID:    c.Subject,
		Admin: c.Admin,
		Theme: c.Theme,
	}, nil
}
