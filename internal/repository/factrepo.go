package repository

import (
	"context"

	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

// FactRepository provides access to facts. Update and Delete are scoped to
// the author: someone else's fact yields errs.ErrForbidden, a missing one errs.ErrNotFound.
type FactRepository interface {
	// List returns all facts ordered by creation time.
	List(ctx context.Context, q model.FactQuery) ([]model.Fact, error)

	// Create inserts f (ID and Author.ID set by the caller) and returns the stored row with author details.
	Create(ctx context.Context, f model.Fact) (model.Fact, error)

	// Update applies the non-nil fields of p to the author's fact.
	Update(ctx context.Context, authorID, id uuid.UUID, p model.FactPatch) (model.Fact, error)

	// Delete removes the author's fact.
	Delete(ctx context.Context, authorID, id uuid.UUID) error
}
