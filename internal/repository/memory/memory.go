// Package memory implements the repository interfaces in process memory.
// It backs the server's "memory" store and end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Store holds all tables behind one lock so fact listings can join authors.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]model.User
	sessions map[uuid.UUID]model.AuthSession
	facts    map[uuid.UUID]model.Fact
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    map[uuid.UUID]model.User{},
		sessions: map[uuid.UUID]model.AuthSession{},
		facts:    map[uuid.UUID]model.Fact{},
		now:      time.Now,
	}
}

type (
	userRepo    struct{ s *Store }
	sessionRepo struct{ s *Store }
	factRepo    struct{ s *Store }
)

func (s *Store) Users() repository.UserRepository       { return &userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepo{s} }
func (s *Store) Facts() repository.FactRepository       { return &factRepo{s} }

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.users {
		if cur.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	c := *u
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.users[c.ID] = c
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *sessionRepo) Create(_ context.Context, a *model.AuthSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[a.UserID]; !ok {
		return errs.ErrNotFound
	}
	r.s.sessions[a.ID] = *a
	return nil
}

func (r *sessionRepo) Get(_ context.Context, id uuid.UUID) (*model.AuthSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.sessions[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

func (r *sessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	delete(r.s.sessions, id)
	r.s.mu.Unlock()
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.sessions {
		if a.ExpiresAt.Before(before) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// withAuthor fills author name/email from the users table. Caller holds the lock.
func (s *Store) withAuthor(f model.Fact) model.Fact {
	if u, ok := s.users[f.Author.ID]; ok {
		f.Author.Name, f.Author.Email = u.Name, u.Email
	}
	return f
}

func (r *factRepo) List(_ context.Context, q model.FactQuery) ([]model.Fact, error) {
	r.s.mu.RLock()
	out := make([]model.Fact, 0, len(r.s.facts))
	for _, f := range r.s.facts {
		if q.IncludeAuthor {
			f = r.s.withAuthor(f)
		}
		out = append(out, f)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.Order == model.OldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

func (r *factRepo) Create(_ context.Context, f model.Fact) (model.Fact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[f.Author.ID]; !ok {
		return model.Fact{}, errs.ErrNotFound
	}
	if _, ok := r.s.facts[f.ID]; ok {
		return model.Fact{}, errs.ErrAlreadyExists
	}
	now := r.s.now()
	f.CreatedAt, f.UpdatedAt = now, now
	f.Author = model.Author{ID: f.Author.ID}
	r.s.facts[f.ID] = f
	return r.s.withAuthor(f), nil
}

// owned returns the fact if authorID wrote it. Caller holds the write lock.
func (r *factRepo) owned(authorID, id uuid.UUID) (model.Fact, error) {
	f, ok := r.s.facts[id]
	if !ok {
		return model.Fact{}, errs.ErrNotFound
	}
	if f.Author.ID != authorID {
		return model.Fact{}, errs.ErrForbidden
	}
	return f, nil
}

func (r *factRepo) Update(_ context.Context, authorID, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, err := r.owned(authorID, id)
	if err != nil {
		return model.Fact{}, err
	}
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Content != nil {
		f.Content = *p.Content
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	f.UpdatedAt = r.s.now()
	r.s.facts[id] = f
	return r.s.withAuthor(f), nil
}

func (r *factRepo) Delete(_ context.Context, authorID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.owned(authorID, id); err != nil {
		return err
	}
	delete(r.s.facts, id)
	return nil
}
