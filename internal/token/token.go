// Package token issues and verifies stateless signed session tokens.
//
// A token is valid iff its HS256 signature recomputes against the process-wide
// signing key and the current time is strictly before the embedded expiry.
// Nothing is stored server-side; rotating the key invalidates every
// outstanding token at once.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/model"
)

// Service mints and checks session tokens with a fixed TTL.
type Service struct {
	signKey []byte
	ttl     time.Duration
}

// NewService constructs a token service. The key must be non-empty.
func NewService(signKey []byte, ttl time.Duration) (*Service, error) {
	if len(signKey) == 0 {
		return nil, errors.New("empty signing key")
	}
	return &Service{signKey: signKey, ttl: ttl}, nil
}

// Issue creates a signed HS256 token for the given subject, expiring ttl from now.
func (s *Service) Issue(userID uuid.UUID) (model.Token, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return model.Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks signature and expiry and returns the subject user ID.
// Failures map to exactly one of errs.ErrTokenMalformed, errs.ErrSignatureInvalid
// or errs.ErrTokenExpired; the HTTP boundary collapses them before responding.
func (s *Service) Verify(raw string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil {
		return uuid.Nil, classify(err)
	}
	if !parsed.Valid {
		return uuid.Nil, errs.ErrSignatureInvalid
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.ErrTokenMalformed
	}
	return id, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errs.ErrSignatureInvalid
	default:
		return errs.ErrTokenMalformed
	}
}
