// Package auth issues and validates the bearer tokens that guard the
// control surface in pkg/api. Identity federation is explicitly out of
// scope (spec.md Non-goals): the only principal the API authenticates is
// the bootstrap admin account from config.AdminConfig. A validated token
// authorizes access to the control surface itself; which catalogue user is
// acting as requester or validator for a given operation is supplied by the
// caller in the request body, the same way a service account would name an
// actor on behalf of an external, unauthenticated UI.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// Claims identifies the authenticated principal. Role is always "admin" in
// the current single-principal model; it is carried as a string rather
// than a bool so a future multi-principal model (Open Question, see
// DESIGN.md) can add roles without changing the token shape.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (c *Claims) IsAdmin() bool { return c.Role == "admin" }

// Config configures token issuance and validation.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Service issues and validates HS256 bearer tokens.
type Service struct {
	cfg Config
}

// NewService constructs a Service. Secret must be at least 32 bytes.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "accessreq"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 8 * time.Hour
	}
	return &Service{cfg: cfg}, nil
}

// IssueToken mints a signed token for username with the given role.
func (s *Service) IssueToken(username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token string.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
