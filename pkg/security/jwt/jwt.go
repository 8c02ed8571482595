package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/blog/pkg/auth"
)

// Signer issues and verifies HS256 access tokens bound to a user id.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type SignerOption func(*Signer)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

func NewSigner(secret []byte, issuer string, ttl time.Duration, opts ...SignerOption) *Signer {
	s := &Signer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Claims carries the standard registered claims; the user id is the subject.
type Claims struct {
	jwt.RegisteredClaims
}

func (s *Signer) Issue(_ context.Context, userID string) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry locally and returns the embedded user id.
func (s *Signer) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", auth.ErrMissingToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", auth.ErrExpired
		}
		return "", auth.ErrInvalidSignature
	}
	if !token.Valid || claims.Subject == "" {
		return "", auth.ErrInvalidSignature
	}
	return claims.Subject, nil
}

var _ auth.TokenSigner = (*Signer)(nil)
