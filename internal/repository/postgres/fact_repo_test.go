package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var factCols = []string{"id", "title", "content", "category", "author_id", "created_at", "updated_at", "name", "email"}

func TestFactRepo_List_WithAuthorNewestFirst(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	author := uuid.Must(uuid.NewV4())
	id1, id2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)

	mock.ExpectQuery(`SELECT f\.id, .* u\.name, u\.email FROM facts f JOIN users u ON u\.id = f\.author_id ORDER BY f\.created_at DESC, f\.id`).
		WillReturnRows(pgxmock.NewRows(factCols).
			AddRow(id1, "new", "c1", "Culinary", author, t1, t1, "Alice", "alice@x.io").
			AddRow(id2, "old", "c2", "Fun Fact", author, t0, t0, "Alice", "alice@x.io"))

	got, err := r.List(context.Background(), model.FactQuery{IncludeAuthor: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, id1, got[0].ID)
	require.Equal(t, model.CategoryCulinary, got[0].Category)
	require.Equal(t, model.CategoryFunFact, got[1].Category)
	require.Equal(t, "Alice", got[1].Author.Name)
	require.Equal(t, author, got[1].Author.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepo_List_BareOldestFirst(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	mock.ExpectQuery(`FROM facts f ORDER BY f\.created_at ASC, f\.id`).
		WillReturnRows(pgxmock.NewRows(factCols))

	got, err := r.List(context.Background(), model.FactQuery{Order: model.OldestFirst})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestFactRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	now := time.Now()
	f := model.Fact{
		ID: uuid.Must(uuid.NewV4()), Title: "t", Content: "c", Category: model.CategoryHistorical,
		Author: model.Author{ID: uuid.Must(uuid.NewV4())},
	}
	mock.ExpectQuery(`WITH ins AS \( INSERT INTO facts \(id, title, content, category, author_id\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(f.ID, f.Title, f.Content, "Historical", f.Author.ID).
		WillReturnRows(pgxmock.NewRows(factCols).
			AddRow(f.ID, f.Title, f.Content, "Historical", f.Author.ID, now, now, "Alice", "alice@x.io"))

	got, err := r.Create(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, f.ID, got.ID)
	require.Equal(t, "Alice", got.Author.Name)
	require.Equal(t, now, got.CreatedAt)
}

func TestFactRepo_Update_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	author := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	title := "renamed"
	cat := model.CategoryCulinary
	catStr := "Culinary"
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM facts WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow(author))
	mock.ExpectQuery(`UPDATE facts SET title = COALESCE\(\$2, title\), content = COALESCE\(\$3, content\), category = COALESCE\(\$4, category\), updated_at = now\(\) WHERE id = \$1`).
		WithArgs(id, &title, (*string)(nil), &catStr).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "content", "category", "author_id", "created_at", "updated_at"}).
			AddRow(id, title, "content", "Culinary", author, now, now))
	mock.ExpectQuery(`SELECT name, email FROM users WHERE id=\$1`).
		WithArgs(author).
		WillReturnRows(pgxmock.NewRows([]string{"name", "email"}).AddRow("Alice", "alice@x.io"))
	mock.ExpectCommit()

	got, err := r.Update(context.Background(), author, id, model.FactPatch{Title: &title, Category: &cat})
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.Equal(t, model.CategoryCulinary, got.Category)
	require.Equal(t, "Alice", got.Author.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepo_Update_NotFoundAndForbidden(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	me := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	title := "x"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM facts WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	_, err := r.Update(context.Background(), me, id, model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM facts WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow(uuid.Must(uuid.NewV4())))
	mock.ExpectRollback()
	_, err = r.Update(context.Background(), me, id, model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFactRepo(db)

	me := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM facts WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow(me))
	mock.ExpectExec(`DELETE FROM facts WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()
	require.NoError(t, r.Delete(context.Background(), me, id))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM facts WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow(uuid.Must(uuid.NewV4())))
	mock.ExpectRollback()
	require.ErrorIs(t, r.Delete(context.Background(), me, id), errs.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}
