// Package service contains application services for authentication and ingestion.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/kstepanov/dormhub/internal/crypto"
	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/limiter"
	"github.com/kstepanov/dormhub/internal/model"
	"github.com/kstepanov/dormhub/internal/repository"
	"github.com/kstepanov/dormhub/internal/token"
)

// AuthService defines credential operations.
type AuthService interface {
	// Register creates a new account with secure password hashing.
	Register(ctx context.Context, name, password string) (userID string, err error)
	// Login applies rate limiting and authenticates, returning a session token.
	Login(ctx context.Context, name, password, ip string) (model.Token, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Service
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Service, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register creates a new user record with a per-user random salt.
// A second registration with the same name fails with errs.ErrAlreadyExists
// and leaves the first record untouched.
func (s *AuthServiceImpl) Register(ctx context.Context, name, password string) (string, error) {
	if name == "" || password == "" {
		return "", errors.New("empty name/password")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	u := &model.User{
		ID:      uid,
		Name:    name,
		PwdHash: pkgcrypto.HashPassword([]byte(password), salt),
		Salt:    salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// dummySalt keeps the unknown-name path as expensive as a wrong password,
// so callers cannot tell registered names apart by response time.
var dummySalt = []byte("dormhub-dummy-salt")

// Login authenticates with rate limiting by (name, ip). Unknown names and
// wrong passwords both fail with errs.ErrUnauthorized.
func (s *AuthServiceImpl) Login(ctx context.Context, name, password, ip string) (model.Token, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, name, ipHash)
	if err != nil {
		return model.Token{}, err
	}
	if !allowed {
		return model.Token{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByName(ctx, name)
	if err != nil {
		pkgcrypto.HashPassword([]byte(password), dummySalt)
		return model.Token{}, s.failLogin(ctx, name, ipHash)
	}
	if !pkgcrypto.VerifyPassword([]byte(password), u.Salt, u.PwdHash) {
		return model.Token{}, s.failLogin(ctx, name, ipHash)
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, name, ipHash)

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Token{}, fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

func (s *AuthServiceImpl) failLogin(ctx context.Context, name string, ipHash []byte) error {
	if blocked, _, err := s.lim.Failure(ctx, name, ipHash); err == nil && blocked {
		return errs.ErrRateLimited
	}
	return errs.ErrUnauthorized
}
