package factstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeRemote struct {
	mu    sync.Mutex
	facts []model.Fact
	user  model.Author
	clock time.Time

	listErr, createErr, updateErr, deleteErr error
	listGate                                 chan struct{} // if set, List waits for it
	listEntered                              chan struct{} // closed when a gated List starts

	listCalls, createCalls, updateCalls, deleteCalls int
	partialUpdate                                    bool // return only changed fields
}

var _ platform.Facts = (*fakeRemote)(nil)

func (f *fakeRemote) List(ctx context.Context, _ model.FactQuery) ([]model.Fact, error) {
	if f.listGate != nil {
		close(f.listEntered)
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Fact, len(f.facts))
	copy(out, f.facts)
	return out, nil
}

func (f *fakeRemote) Create(_ context.Context, d model.FactDraft) (model.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return model.Fact{}, f.createErr
	}
	f.clock = f.clock.Add(time.Minute)
	fact := model.Fact{
		ID: uuid.Must(uuid.NewV4()), Title: d.Title, Content: d.Content, Category: d.Category,
		Author: f.user, CreatedAt: f.clock, UpdatedAt: f.clock,
	}
	f.facts = append(f.facts, fact)
	return model.Fact{ID: fact.ID, Title: fact.Title, Content: fact.Content, Category: fact.Category}, nil
}

func (f *fakeRemote) Update(_ context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return model.Fact{}, f.updateErr
	}
	for i := range f.facts {
		if f.facts[i].ID != id {
			continue
		}
		var partial model.Fact
		if p.Title != nil {
			f.facts[i].Title, partial.Title = *p.Title, *p.Title
		}
		if p.Content != nil {
			f.facts[i].Content, partial.Content = *p.Content, *p.Content
		}
		if p.Category != nil {
			f.facts[i].Category, partial.Category = *p.Category, *p.Category
		}
		if f.partialUpdate {
			return partial, nil
		}
		return f.facts[i], nil
	}
	return model.Fact{}, errs.ErrNotFound
}

func (f *fakeRemote) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.facts {
		if f.facts[i].ID == id {
			f.facts = append(f.facts[:i], f.facts[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fixedSession struct{ s *model.Session }

func (f fixedSession) Current() *model.Session { return f.s }

func setup(t *testing.T) (*Store, *fakeRemote, model.Author) {
	t.Helper()
	me := model.Author{ID: uuid.Must(uuid.NewV4()), Name: "Alice", Email: "alice@x.io"}
	remote := &fakeRemote{user: me, clock: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	sess := fixedSession{s: &model.Session{ID: me.ID, Name: me.Name, Email: me.Email}}
	return New(remote, sess, zaptest.NewLogger(t)), remote, me
}

func draft(title string) model.FactDraft {
	return model.FactDraft{Title: title, Content: "content of " + title, Category: model.CategoryFunFact}
}

func TestLoad_ReplacesAndOrdersNewestFirst(t *testing.T) {
	t.Parallel()
	s, remote, me := setup(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	remote.facts = []model.Fact{
		{ID: uuid.Must(uuid.NewV4()), Title: "old", CreatedAt: base, Author: me},
		{ID: uuid.Must(uuid.NewV4()), Title: "new", CreatedAt: base.Add(time.Hour), Author: me},
	}
	require.NoError(t, s.Load(context.Background()))

	got := s.Facts()
	require.Len(t, got, 2)
	require.Equal(t, "new", got[0].Title)
	require.Equal(t, "old", got[1].Title)

	remote.facts = remote.facts[:1]
	require.NoError(t, s.Load(context.Background()))
	require.Len(t, s.Facts(), 1)
}

func TestLoad_FailureKeepsCollection(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	_, err := s.Create(ctx, draft("a"))
	require.NoError(t, err)
	before := s.Facts()

	remote.listErr = errors.New("boom")
	err = s.Load(ctx)
	require.ErrorIs(t, err, errs.ErrLoad)
	require.Equal(t, MsgLoad, err.Error())
	require.Equal(t, before, s.Facts())
}

func TestCreate_ReloadsAndAddsExactlyOne(t *testing.T) {
	t.Parallel()
	s, remote, me := setup(t)
	ctx := context.Background()

	_, err := s.Create(ctx, draft("first"))
	require.NoError(t, err)
	created, err := s.Create(ctx, draft("second"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got := s.Facts()
	require.Len(t, got, 2)
	require.Equal(t, created.ID, got[0].ID)
	require.Equal(t, "second", got[0].Title)
	require.Equal(t, me, got[0].Author, "author arrives through the reload")
	require.Equal(t, 2, remote.listCalls)
}

func TestCreate_InvalidDraftNoRemoteCall(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)

	_, err := s.Create(context.Background(), model.FactDraft{Title: "t", Content: "c", Category: "Gossip"})
	require.ErrorIs(t, err, errs.ErrWrite)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, MsgCreate, err.Error())
	require.Zero(t, remote.createCalls)
}

func TestCreate_RemoteFailureLeavesCollection(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	_, err := s.Create(ctx, draft("a"))
	require.NoError(t, err)
	before := s.Facts()

	remote.createErr = errors.New("rejected")
	_, err = s.Create(ctx, draft("b"))
	require.ErrorIs(t, err, errs.ErrWrite)
	require.Equal(t, before, s.Facts())
}

func TestCreate_ReloadFailureIsLoadError(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)

	remote.listErr = errors.New("list down")
	created, err := s.Create(context.Background(), draft("a"))
	require.ErrorIs(t, err, errs.ErrLoad)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Len(t, remote.facts, 1)
}

func TestUpdate_MergesReturnedFields(t *testing.T) {
	t.Parallel()
	s, remote, me := setup(t)
	ctx := context.Background()
	remote.partialUpdate = true

	created, err := s.Create(ctx, draft("orig"))
	require.NoError(t, err)

	title := "renamed"
	got, err := s.Update(ctx, created.ID, model.FactPatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)

	f, ok := s.Get(created.ID)
	require.True(t, ok)
	require.Equal(t, "renamed", f.Title)
	require.Equal(t, "content of orig", f.Content)
	require.Equal(t, model.CategoryFunFact, f.Category)
	require.Equal(t, me, f.Author)
	require.Equal(t, 1, remote.listCalls, "update must not reload")
}

func TestUpdate_Preconditions(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	title := "x"
	_, err := s.Update(ctx, uuid.Must(uuid.NewV4()), model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrWrite)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = s.Update(ctx, uuid.Must(uuid.NewV4()), model.FactPatch{})
	require.ErrorIs(t, err, errs.ErrValidation)

	// someone else's fact
	other := model.Fact{ID: uuid.Must(uuid.NewV4()), Title: "theirs", Author: model.Author{ID: uuid.Must(uuid.NewV4())}}
	remote.facts = append(remote.facts, other)
	require.NoError(t, s.Load(ctx))
	require.False(t, s.CanEdit(other))

	_, err = s.Update(ctx, other.ID, model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.Equal(t, MsgUpdate, err.Error())
	require.Zero(t, remote.updateCalls)
}

func TestUpdate_RemoteFailureLeavesCollection(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	created, err := s.Create(ctx, draft("a"))
	require.NoError(t, err)
	before := s.Facts()

	remote.updateErr = errors.New("rejected")
	title := "b"
	_, err = s.Update(ctx, created.ID, model.FactPatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrWrite)
	require.Equal(t, before, s.Facts())
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	a, err := s.Create(ctx, draft("a"))
	require.NoError(t, err)
	b, err := s.Create(ctx, draft("b"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	got := s.Facts()
	require.Len(t, got, 1)
	require.Equal(t, b.ID, got[0].ID)

	// already gone remotely: normal write error, collection untouched
	err = s.Delete(ctx, a.ID)
	require.ErrorIs(t, err, errs.ErrWrite)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, MsgDelete, err.Error())
	require.Len(t, s.Facts(), 1)

	remote.deleteErr = errors.New("down")
	require.ErrorIs(t, s.Delete(ctx, b.ID), errs.ErrWrite)
	require.Len(t, s.Facts(), 1)
}

func TestDelete_ForeignFactRejectedLocally(t *testing.T) {
	t.Parallel()
	s, remote, _ := setup(t)
	ctx := context.Background()

	other := model.Fact{ID: uuid.Must(uuid.NewV4()), Author: model.Author{ID: uuid.Must(uuid.NewV4())}}
	remote.facts = []model.Fact{other}
	require.NoError(t, s.Load(ctx))

	require.ErrorIs(t, s.Delete(ctx, other.ID), errs.ErrForbidden)
	require.Zero(t, remote.deleteCalls)
}

func TestClear_DropsInFlightLoad(t *testing.T) {
	t.Parallel()
	s, remote, me := setup(t)

	remote.facts = []model.Fact{{ID: uuid.Must(uuid.NewV4()), Title: "x", Author: me}}
	remote.listGate = make(chan struct{})
	remote.listEntered = make(chan struct{})
	entered := remote.listEntered

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	<-entered
	s.Clear()
	close(remote.listGate)
	require.NoError(t, <-done)
	require.Empty(t, s.Facts())
}

func TestCanEdit_Anonymous(t *testing.T) {
	t.Parallel()

	s := New(&fakeRemote{}, fixedSession{}, nil)
	require.False(t, s.CanEdit(model.Fact{Author: model.Author{ID: uuid.Must(uuid.NewV4())}}))
}

func TestFacts_ReturnsCopy(t *testing.T) {
	t.Parallel()
	s, _, _ := setup(t)

	_, err := s.Create(context.Background(), draft("a"))
	require.NoError(t, err)

	got := s.Facts()
	got[0].Title = "mutated"
	require.Equal(t, "a", s.Facts()[0].Title)
}

func TestOnChange_CalledOnMutations(t *testing.T) {
	t.Parallel()
	s, _, _ := setup(t)
	ctx := context.Background()

	n := 0
	s.OnChange(func() { n++ })

	created, err := s.Create(ctx, draft("a")) // reload
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, created.ID))
	s.Clear()
	require.Equal(t, 3, n)
}
