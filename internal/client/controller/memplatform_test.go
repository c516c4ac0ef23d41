package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"github.com/gofrs/uuid/v5"
)

// memPlatform is an in-memory backend enforcing ownership like the server does.
type memPlatform struct {
	mu       sync.Mutex
	users    map[string]memUser // by email
	facts    []model.Fact
	token    string // email of the logged-in user
	now      time.Time
	pingErr  error
	pings    int
	listErr  error
	writeErr error
}

type memUser struct {
	author   model.Author
	password string
}

var _ platform.Platform = (*memPlatform)(nil)

func newMemPlatform() *memPlatform {
	return &memPlatform{users: map[string]memUser{}, now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memPlatform) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	return m.pingErr
}

func (m *memPlatform) CurrentIdentity(context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return nil, nil
	}
	a := m.users[m.token].author
	return &model.Session{ID: a.ID, Name: a.Name, Email: a.Email}, nil
}

func (m *memPlatform) Login(_ context.Context, email, password string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok || u.password != password {
		return model.Session{}, errs.ErrUnauthorized
	}
	m.token = email
	return model.Session{ID: u.author.ID, Name: u.author.Name, Email: email}, nil
}

func (m *memPlatform) Signup(_ context.Context, name, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return errs.ErrAlreadyExists
	}
	m.users[email] = memUser{author: model.Author{ID: uuid.Must(uuid.NewV4()), Name: name, Email: email}, password: password}
	return nil
}

func (m *memPlatform) Logout(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memPlatform) me() (model.Author, error) {
	if m.token == "" {
		return model.Author{}, errs.ErrUnauthorized
	}
	return m.users[m.token].author, nil
}

func (m *memPlatform) List(_ context.Context, q model.FactQuery) ([]model.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.me(); err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]model.Fact(nil), m.facts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPlatform) Create(_ context.Context, d model.FactDraft) (model.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	me, err := m.me()
	if err != nil {
		return model.Fact{}, err
	}
	if m.writeErr != nil {
		return model.Fact{}, m.writeErr
	}
	m.now = m.now.Add(time.Second)
	f := model.Fact{ID: uuid.Must(uuid.NewV4()), Title: d.Title, Content: d.Content, Category: d.Category,
		Author: me, CreatedAt: m.now, UpdatedAt: m.now}
	m.facts = append(m.facts, f)
	return f, nil
}

func (m *memPlatform) Update(_ context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	me, err := m.me()
	if err != nil {
		return model.Fact{}, err
	}
	if m.writeErr != nil {
		return model.Fact{}, m.writeErr
	}
	for i := range m.facts {
		f := &m.facts[i]
		if f.ID != id {
			continue
		}
		if f.Author.ID != me.ID {
			return model.Fact{}, errs.ErrForbidden
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
		return *f, nil
	}
	return model.Fact{}, errs.ErrNotFound
}

func (m *memPlatform) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	me, err := m.me()
	if err != nil {
		return err
	}
	for i := range m.facts {
		if m.facts[i].ID != id {
			continue
		}
		if m.facts[i].Author.ID != me.ID {
			return fmt.Errorf("delete: %w", errs.ErrForbidden)
		}
		m.facts = append(m.facts[:i], m.facts[i+1:]...)
		return nil
	}
	return errs.ErrNotFound
}
