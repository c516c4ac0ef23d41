package memory

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, email string) model.User {
	t.Helper()
	u := model.User{ID: uuid.Must(uuid.NewV4()), Name: email[:1], Email: email}
	require.NoError(t, s.Users().Create(context.Background(), &u))
	return u
}

func TestUsers_UniqueEmail(t *testing.T) {
	t.Parallel()
	s := New()
	u := seed(t, s, "a@x.io")

	dup := model.User{ID: uuid.Must(uuid.NewV4()), Email: "a@x.io"}
	require.ErrorIs(t, s.Users().Create(context.Background(), &dup), errs.ErrAlreadyExists)

	got, err := s.Users().GetByEmail(context.Background(), "a@x.io")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetByID(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFacts_OwnershipAndOrder(t *testing.T) {
	t.Parallel()
	s := New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { now = now.Add(time.Second); return now }
	ctx := context.Background()
	alice := seed(t, s, "alice@x.io")
	bob := seed(t, s, "bob@x.io")

	first, err := s.Facts().Create(ctx, model.Fact{ID: uuid.Must(uuid.NewV4()), Title: "one", Content: "c", Category: model.CategoryCulinary, Author: model.Author{ID: alice.ID}})
	require.NoError(t, err)
	require.Equal(t, "alice@x.io", first.Author.Email)
	second, err := s.Facts().Create(ctx, model.Fact{ID: uuid.Must(uuid.NewV4()), Title: "two", Content: "c", Category: model.CategoryFunFact, Author: model.Author{ID: bob.ID}})
	require.NoError(t, err)

	list, err := s.Facts().List(ctx, model.FactQuery{IncludeAuthor: true})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{second.ID, first.ID}, []uuid.UUID{list[0].ID, list[1].ID})
	require.Equal(t, "b", list[0].Author.Name)

	list, err = s.Facts().List(ctx, model.FactQuery{Order: model.OldestFirst})
	require.NoError(t, err)
	require.Equal(t, first.ID, list[0].ID)
	require.Empty(t, list[0].Author.Email)

	title := "uno"
	_, err = s.Facts().Update(ctx, bob.ID, first.ID, model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrForbidden)
	upd, err := s.Facts().Update(ctx, alice.ID, first.ID, model.FactPatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "uno", upd.Title)
	require.Equal(t, "c", upd.Content)
	require.True(t, upd.UpdatedAt.After(upd.CreatedAt))

	require.ErrorIs(t, s.Facts().Delete(ctx, alice.ID, second.ID), errs.ErrForbidden)
	require.NoError(t, s.Facts().Delete(ctx, bob.ID, second.ID))
	require.ErrorIs(t, s.Facts().Delete(ctx, bob.ID, second.ID), errs.ErrNotFound)
}

func TestSessions_DeleteExpired(t *testing.T) {
	t.Parallel()
	s := New()
	u := seed(t, s, "a@x.io")
	ctx := context.Background()
	now := time.Now()

	old := model.AuthSession{ID: uuid.Must(uuid.NewV4()), UserID: u.ID, ExpiresAt: now.Add(-time.Minute)}
	live := model.AuthSession{ID: uuid.Must(uuid.NewV4()), UserID: u.ID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Sessions().Create(ctx, &old))
	require.NoError(t, s.Sessions().Create(ctx, &live))

	n, err := s.Sessions().DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.Sessions().Get(ctx, old.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	got, err := s.Sessions().Get(ctx, live.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
}
