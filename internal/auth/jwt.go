package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sales-crm/internal/config"
)

const clockSkew = 30 * time.Second

var (
	ErrNoSecret      = errors.New("auth: JWT_SECRET is required")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrWrongKind     = errors.New("auth: wrong token type")
	ErrMissingClaims = errors.New("auth: token lacks identity claims")
)

// Manager signs and checks HS256 session tokens.
type Manager struct {
	secret     []byte
	issuer     string
	audience   jwt.ClaimStrings
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret
	}
	m := &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
	if cfg.JWTAudience != "" {
		m.audience = jwt.ClaimStrings{cfg.JWTAudience}
	}
	return m, nil
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (m *Manager) IssuePair(now time.Time, u User) (TokenPair, error) {
	access, err := m.sign(now, TokenTypeAccess, u, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	u.Role = ""
	refresh, err := m.sign(now, TokenTypeRefresh, u, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: now.Add(m.accessTTL).UTC()}, nil
}

// Verify checks signature, registered claims as of now, and the token kind.
func (m *Manager) Verify(raw string, kind TokenType, now time.Time) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(clockSkew),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if len(m.audience) > 0 {
		opts = append(opts, jwt.WithAudience(m.audience[0]))
	}
	if err := jwt.NewValidator(opts...).Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	switch {
	case claims.TokenType != kind:
		return Claims{}, ErrWrongKind
	case claims.UserID == "", kind == TokenTypeAccess && claims.Role == "":
		return Claims{}, ErrMissingClaims
	}
	return claims, nil
}

func (m *Manager) sign(now time.Time, kind TokenType, u User, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.ID,
			Audience:  m.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		TokenType: kind,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
