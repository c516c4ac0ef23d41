// Package factstore keeps the client's ordered projection of the remote fact
// collection and performs CRUD against the platform.
package factstore

import (
	"context"
	"sort"
	"sync"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Messages shown for failed operations.
const (
	MsgLoad   = "Could not load facts."
	MsgCreate = "Could not create the fact. Please check your input."
	MsgUpdate = "Could not update the fact."
	MsgDelete = "Could not delete the fact."
)

// SessionSource exposes the current identity; session.Manager implements it.
type SessionSource interface {
	Current() *model.Session
}

// Store holds facts ordered by CreatedAt, newest first. The mutex guards
// in-memory state only; remote calls run unlocked and may interleave.
type Store struct {
	remote   platform.Facts
	sessions SessionSource
	log      *zap.Logger

	mu       sync.Mutex
	items    []model.Fact
	epoch    uint64 // bumped by Clear; results of older operations are dropped
	onChange func()
}

// New constructs an empty Store.
func New(remote platform.Facts, sessions SessionSource, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{remote: remote, sessions: sessions, log: log}
}

// OnChange registers the single listener called after the collection changes.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Facts returns a copy of the collection.
func (s *Store) Facts() []model.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Fact, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the fact with the given id.
func (s *Store) Get(id uuid.UUID) (model.Fact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return model.Fact{}, false
}

// CanEdit reports whether the current session authored f. It only drives the
// client affordance; the backend enforces ownership on its own.
func (s *Store) CanEdit(f model.Fact) bool {
	cur := s.sessions.Current()
	return cur != nil && f.Author.ID != uuid.Nil && cur.ID == f.Author.ID
}

// Clear empties the collection and invalidates in-flight operations.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.epoch++
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Load replaces the collection with the remote one. On failure the collection is untouched.
func (s *Store) Load(ctx context.Context) error {
	epoch := s.currentEpoch()
	list, err := s.remote.List(ctx, model.FactQuery{IncludeAuthor: true, Order: model.NewestFirst})
	if err != nil {
		s.log.Warn("load facts", zap.Error(err))
		return errs.New(errs.ErrLoad, "factstore.load", MsgLoad, err)
	}
	sortNewestFirst(list)

	s.commit(epoch, func() { s.items = list })
	return nil
}

// Create validates d, creates it remotely and then reloads the whole collection
// so the new fact arrives with its author. A failed reload after a successful
// create is reported as a load error; the created fact is still returned.
func (s *Store) Create(ctx context.Context, d model.FactDraft) (model.Fact, error) {
	const op = "factstore.create"
	if err := d.Validate(); err != nil {
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgCreate, err)
	}
	created, err := s.remote.Create(ctx, d.Normalize())
	if err != nil {
		s.log.Warn("create fact", zap.Error(err))
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgCreate, err)
	}
	if err := s.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Update applies p remotely and merges the returned fields into the local
// record in place. The fact must be present locally and owned by the session.
func (s *Store) Update(ctx context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	const op = "factstore.update"
	if err := p.Validate(); err != nil {
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgUpdate, err)
	}
	cur, ok := s.Get(id)
	if !ok {
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgUpdate, errs.ErrNotFound)
	}
	if !s.CanEdit(cur) {
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgUpdate, errs.ErrForbidden)
	}

	epoch := s.currentEpoch()
	upd, err := s.remote.Update(ctx, id, p.Normalize())
	if err != nil {
		s.log.Warn("update fact", zap.String("id", id.String()), zap.Error(err))
		return model.Fact{}, errs.New(errs.ErrWrite, op, MsgUpdate, err)
	}

	merged := cur.Merge(upd)
	s.commit(epoch, func() {
		// merge into whatever is current now, not the snapshot taken above
		if i := s.indexLocked(id); i >= 0 {
			s.items[i] = s.items[i].Merge(upd)
			merged = s.items[i]
		}
	})
	return merged, nil
}

// Delete removes the fact remotely and then locally. A fact visibly owned by
// someone else is rejected without a remote call.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "factstore.delete"
	if cur, ok := s.Get(id); ok && !s.CanEdit(cur) {
		return errs.New(errs.ErrWrite, op, MsgDelete, errs.ErrForbidden)
	}

	epoch := s.currentEpoch()
	if err := s.remote.Delete(ctx, id); err != nil {
		s.log.Warn("delete fact", zap.String("id", id.String()), zap.Error(err))
		return errs.New(errs.ErrWrite, op, MsgDelete, err)
	}
	s.commit(epoch, func() {
		if i := s.indexLocked(id); i >= 0 {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
		}
	})
	return nil
}

func (s *Store) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// commit applies fn under the lock unless Clear ran since epoch was read.
func (s *Store) commit(epoch uint64, fn func()) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug("dropping result of operation started before clear")
		return
	}
	fn()
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(list []model.Fact) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
