// Package tokenx mints and verifies the opaque session tokens handed out
// after a successful login. The credential service itself only produces a
// session seed; turning that seed into a bearer token is this package's job.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("tokenx: invalid token")
	ErrExpiredToken = errors.New("tokenx: token expired")
)

// Claims is the payload carried by a session token.
type Claims struct {
	AccountID string `json:"acct"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens with an HMAC secret.
type Issuer struct {
	Secret      []byte
	Issuer      string
	SessionTTL  time.Duration // lifetime of a normal session
	RememberTTL time.Duration // lifetime when the caller asked to be remembered
}

// Seed is the minimal identity material required to mint a token. It mirrors
// what the credential service returns from Login.
type Seed struct {
	UserID     string
	AccountID  string
	Role       string
	RememberMe bool
}

// Issue mints a signed session token from seed.
func (i *Issuer) Issue(seed Seed) (string, error) {
	now := time.Now()
	ttl := i.SessionTTL
	if seed.RememberMe {
		ttl = i.RememberTTL
	}

	claims := Claims{
		AccountID: seed.AccountID,
		Role:      seed.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Issuer,
			Subject:   seed.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Verify parses and validates a session token, returning its claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.Secret, nil
	}, jwt.WithIssuer(i.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
