package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Principal is the authenticated identity embedded in tokens and attached to
// request contexts. It never carries the password hash.
type Principal struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Claims struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// Principal rebuilds the token's principal payload.
func (c *Claims) Principal() Principal {
	return Principal{
		ID:        c.Subject,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

// TokenManager mints and verifies HS256 tokens with a single shared secret.
// Verification pins the signing method; a token claiming any other algorithm
// is rejected regardless of its signature.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}
}

// Issue mints a token for principal expiring after the configured TTL.
func (m *TokenManager) Issue(p Principal) (string, error) {
	return m.issueAt(p, time.Now(), nil)
}

func (m *TokenManager) issueAt(p Principal, now time.Time, minExpiry *time.Time) (string, error) {
	if p.ID == "" {
		return "", ErrInvalidToken
	}

	expiresAt := now.Add(m.ttl)
	if minExpiry != nil && minExpiry.After(expiresAt) {
		expiresAt = *minExpiry
	}

	claims := &Claims{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
// Returns ErrExpiredToken for a well-signed token past its expiry and
// ErrInvalidToken for every other failure.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh verifies tokenString and mints a replacement carrying the same
// principal payload. The new expiry is now+TTL, clamped up to the old expiry
// so that expiry never decreases across a refresh chain.
func (m *TokenManager) Refresh(tokenString string) (string, error) {
	claims, err := m.Verify(tokenString)
	if err != nil {
		return "", err
	}

	var minExpiry *time.Time
	if claims.ExpiresAt != nil {
		minExpiry = &claims.ExpiresAt.Time
	}
	return m.issueAt(claims.Principal(), time.Now(), minExpiry)
}

// TokenFromHeader extracts a bearer token from an Authorization header value.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
