package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSecret     = errors.New("auth: AUTH_JWT_SECRET not set")
	ErrInvalidToken = errors.New("auth: invalid token")
)

type claims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	Role     string `json:"role,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Issue signs a token for u, valid for the configured TTL.
func (m *Middleware) Issue(u User) (string, error) {
	if !m.Enabled() {
		return "", ErrNoSecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
		UID:      u.Username,
		Role:     u.Role.Name,
		Provider: u.AuthenticationSource.Provider,
	}
	if m.audience != "" {
		c.Audience = jwt.ClaimStrings{m.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Middleware) validateToken(raw string) (User, error) {
	if !m.Enabled() {
		return User{}, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var c claims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return User{}, ErrInvalidToken
	}

	username := firstNonEmpty(c.UID, c.Subject)
	if username == "" {
		return User{}, errors.New("auth: token has no subject")
	}
	return User{
		Username:             username,
		AuthenticationSource: AuthenticationSource{Provider: firstNonEmpty(c.Provider, "jwt")},
		Role:                 Role{Name: c.Role},
	}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
