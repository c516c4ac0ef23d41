// Package platform declares the remote backend contract the client controller
// depends on. grpcclient provides the production implementation.
package platform

import (
	"context"

	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Auth manages the remote identity. Implementations persist the access token
// themselves; callers never see it.
type Auth interface {
	// CurrentIdentity returns the identity bound to the stored token, or nil when anonymous.
	CurrentIdentity(ctx context.Context) (*model.Session, error)
	// Login authenticates and persists the issued token.
	Login(ctx context.Context, email, password string) (model.Session, error)
	// Signup registers a new account without logging in.
	Signup(ctx context.Context, name, email, password string) error
	// Logout invalidates the remote session and forgets the stored token.
	Logout(ctx context.Context) error
}

// Facts is the remote fact collection.
type Facts interface {
	List(ctx context.Context, q model.FactQuery) ([]model.Fact, error)
	Create(ctx context.Context, d model.FactDraft) (model.Fact, error)
	// Update returns the fields the backend reports after applying p; it may be partial.
	Update(ctx context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Pinger checks backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Platform bundles everything the controller needs from the backend.
type Platform interface {
	Auth
	Facts
	Pinger
}
