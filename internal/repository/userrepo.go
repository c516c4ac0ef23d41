// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts.
type UserRepository interface {
	// Create inserts a new user; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository stores login sessions referenced by access tokens.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, s *model.AuthSession) error
	// Get loads a session by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.AuthSession, error)
	// Delete removes a session; a missing session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes sessions that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
