// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kstepanov/dormhub/internal/model"
)

// UserRepository provides access to registered accounts.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists if the name is taken;
	// the existing row is never overwritten.
	Create(ctx context.Context, u *model.User) error
	// GetByName loads a user by its unique name.
	GetByName(ctx context.Context, name string) (*model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
