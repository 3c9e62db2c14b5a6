// server/internal/auth/auth.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTClaims is the token payload. Subject carries the caller id.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{secret: []byte(cfg.Secret), ttl: cfg.TTL(), now: time.Now}
}

func (m *TokenManager) Generate(caller models.Caller) (string, error) {
	if caller.ID == "" {
		return "", errors.New("token subject is required")
	}
	issued := m.now()
	claims := &JWTClaims{
		Email: caller.Email,
		Name:  caller.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies tokenString and returns the caller it names.
func (m *TokenManager) Parse(tokenString string) (models.Caller, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return models.Caller{}, ErrInvalidToken
	}
	return models.Caller{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
