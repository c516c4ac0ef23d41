package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// FactRepo implements FactRepository using PostgreSQL.
type FactRepo struct{ db *DB }

// NewFactRepo constructs a fact repository.
func NewFactRepo(db *DB) *FactRepo { return &FactRepo{db: db} }

const (
	listWithAuthor = `
SELECT f.id, f.title, f.content, f.category, f.author_id, f.created_at, f.updated_at, u.name, u.email
FROM facts f JOIN users u ON u.id = f.author_id
ORDER BY f.created_at %s, f.id`
	listBare = `
SELECT f.id, f.title, f.content, f.category, f.author_id, f.created_at, f.updated_at, '', ''
FROM facts f
ORDER BY f.created_at %s, f.id`
)

// List returns all facts ordered by created_at.
func (r *FactRepo) List(ctx context.Context, q model.FactQuery) ([]model.Fact, error) {
	dir := "DESC"
	if q.Order == model.OldestFirst {
		dir = "ASC"
	}
	base := listBare
	if q.IncludeAuthor {
		base = listWithAuthor
	}
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(base, dir))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Fact, 0)
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts a fact and returns it joined with its author.
func (r *FactRepo) Create(ctx context.Context, f model.Fact) (model.Fact, error) {
	const q = `
WITH ins AS (
  INSERT INTO facts (id, title, content, category, author_id)
  VALUES ($1, $2, $3, $4, $5)
  RETURNING id, title, content, category, author_id, created_at, updated_at
)
SELECT ins.id, ins.title, ins.content, ins.category, ins.author_id, ins.created_at, ins.updated_at, u.name, u.email
FROM ins JOIN users u ON u.id = ins.author_id`
	row := r.db.Pool.QueryRow(ctx, q, f.ID, f.Title, f.Content, string(f.Category), f.Author.ID)
	out, err := scanFact(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Fact{}, errs.ErrAlreadyExists
		}
		return model.Fact{}, err
	}
	return out, nil
}

// Update applies non-nil patch fields to the author's fact.
func (r *FactRepo) Update(ctx context.Context, authorID, id uuid.UUID, p model.FactPatch) (out model.Fact, err error) {
	const upd = `
UPDATE facts
SET title = COALESCE($2, title), content = COALESCE($3, content), category = COALESCE($4, category), updated_at = now()
WHERE id = $1
RETURNING id, title, content, category, author_id, created_at, updated_at`
	const author = `SELECT name, email FROM users WHERE id=$1`

	var category *string
	if p.Category != nil {
		c := string(*p.Category)
		category = &c
	}

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, authorID, id); err != nil {
			return err
		}
		var cat string
		if err := tx.QueryRow(ctx, upd, id, p.Title, p.Content, category).
			Scan(&out.ID, &out.Title, &out.Content, &cat, &out.Author.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
			return err
		}
		out.Category = model.Category(cat)
		return tx.QueryRow(ctx, author, out.Author.ID).Scan(&out.Author.Name, &out.Author.Email)
	})
	if err != nil {
		return model.Fact{}, err
	}
	return out, nil
}

// Delete removes the author's fact.
func (r *FactRepo) Delete(ctx context.Context, authorID, id uuid.UUID) error {
	const del = `DELETE FROM facts WHERE id=$1`
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, authorID, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, del, id)
		return err
	})
}

// checkOwner locks the fact row and verifies its author.
func checkOwner(ctx context.Context, tx pgx.Tx, authorID, id uuid.UUID) error {
	const sel = `SELECT author_id FROM facts WHERE id=$1 FOR UPDATE`
	var owner uuid.UUID
	if err := tx.QueryRow(ctx, sel, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if owner != authorID {
		return errs.ErrForbidden
	}
	return nil
}

func scanFact(row pgx.Row) (model.Fact, error) {
	var (
		f   model.Fact
		cat string
	)
	if err := row.Scan(&f.ID, &f.Title, &f.Content, &cat, &f.Author.ID, &f.CreatedAt, &f.UpdatedAt,
		&f.Author.Name, &f.Author.Email); err != nil {
		return model.Fact{}, err
	}
	f.Category = model.Category(cat)
	return f, nil
}
