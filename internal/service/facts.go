package service

import (
	"context"
	"fmt"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// FactService defines fact operations. Mutations are scoped to the calling author.
type FactService interface {
	List(ctx context.Context, q model.FactQuery) ([]model.Fact, error)
	Create(ctx context.Context, authorID uuid.UUID, d model.FactDraft) (model.Fact, error)
	Update(ctx context.Context, authorID, id uuid.UUID, p model.FactPatch) (model.Fact, error)
	Delete(ctx context.Context, authorID, id uuid.UUID) error
}

type factService struct {
	repo repository.FactRepository
}

// NewFactService constructs FactService.
func NewFactService(repo repository.FactRepository) FactService {
	return &factService{repo: repo}
}

func (s *factService) List(ctx context.Context, q model.FactQuery) ([]model.Fact, error) {
	return s.repo.List(ctx, q)
}

func (s *factService) Create(ctx context.Context, authorID uuid.UUID, d model.FactDraft) (model.Fact, error) {
	if authorID == uuid.Nil {
		return model.Fact{}, fmt.Errorf("%w: author is required", errs.ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return model.Fact{}, err
	}
	d = d.Normalize()
	id, err := uuid.NewV4()
	if err != nil {
		return model.Fact{}, err
	}
	return s.repo.Create(ctx, model.Fact{
		ID:       id,
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Author:   model.Author{ID: authorID},
	})
}

func (s *factService) Update(ctx context.Context, authorID, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	if authorID == uuid.Nil || id == uuid.Nil {
		return model.Fact{}, fmt.Errorf("%w: author and id are required", errs.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return model.Fact{}, err
	}
	return s.repo.Update(ctx, authorID, id, p.Normalize())
}

func (s *factService) Delete(ctx context.Context, authorID, id uuid.UUID) error {
	if authorID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("%w: author and id are required", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, authorID, id)
}
