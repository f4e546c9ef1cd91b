package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/cliplearn/backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token classes the provider issues.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Verification failure reasons carried by TokenError.
const (
	ReasonMalformed         = "malformed"
	ReasonExpired           = "expired"
	ReasonSignatureMismatch = "signature mismatch"
)

// TokenError classifies a verification failure. Callers branch on Reason;
// the wrapped error keeps the underlying jwt detail for logs.
type TokenError struct {
	Reason string
	err    error
}

func (e *TokenError) Error() string { return "token " + e.Reason }
func (e *TokenError) Unwrap() error { return e.err }

// Claims holds the JWT payload fields. Subject user id travels as "id",
// matching the wire contract consumed by clients.
type Claims struct {
	UserID int  `json:"id"`
	Kind   Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a single process-wide secret.
// Tokens are fully stateless: validity is the signature plus the embedded
// expiry, nothing is stored server-side and nothing can be revoked early.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// Sign issues a token of the given kind for userID. Access tokens expire in
// 30 minutes, refresh tokens in 7 days (both configurable).
func (p *Provider) Sign(userID int, kind Kind) (string, error) {
	ttl := p.accessTTL
	if kind == KindRefresh {
		ttl = p.refreshTTL
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses and checks a token string. Pure and side-effect-free; on
// failure it returns a *TokenError classified as malformed, expired, or
// signature mismatch.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &TokenError{Reason: ReasonMalformed}
	}
	return claims, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Reason: ReasonExpired, err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Reason: ReasonSignatureMismatch, err: err}
	default:
		return &TokenError{Reason: ReasonMalformed, err: err}
	}
}
