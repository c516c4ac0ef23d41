// Package session tracks the authenticated identity on the client.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"go.uber.org/zap"
)

// Messages shown for authentication failures.
const (
	MsgGeneric         = "An authentication error occurred."
	MsgBadCredentials  = "Invalid email or password."
	MsgMissingLogin    = "Email and password are required."
	MsgMissingSignup   = "Name, email and password are required."
	MsgAlreadySignedIn = "Already signed in. Log out first."
	MsgRateLimited     = "Too many failed attempts. Try again later."
	MsgEmailTaken      = "An account with this email already exists."
)

// Manager owns the current session. All transitions go through its methods.
type Manager struct {
	auth platform.Auth
	log  *zap.Logger

	mu       sync.Mutex
	current  *model.Session
	onChange func()
}

// New constructs an anonymous Manager.
func New(auth platform.Auth, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{auth: auth, log: log}
}

// OnChange registers the single listener called after the session changes.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Current returns a copy of the session, or nil when anonymous.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Restore recovers a persisted session. It never fails: any error leaves the
// manager anonymous. An existing session is returned without a remote call.
func (m *Manager) Restore(ctx context.Context) *model.Session {
	if cur := m.Current(); cur != nil {
		return cur
	}
	s, err := m.auth.CurrentIdentity(ctx)
	if err != nil {
		m.log.Info("session restore failed, continuing anonymous", zap.Error(err))
		return nil
	}
	if s == nil {
		return nil
	}
	m.set(s)
	return m.Current()
}

// Login authenticates and loads the identity. On failure nothing changes locally.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.Session, error) {
	const op = "session.login"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errs.New(errs.ErrAuthentication, op, MsgMissingLogin, errs.ErrValidation)
	}
	if m.Current() != nil {
		return nil, errs.New(errs.ErrAuthentication, op, MsgAlreadySignedIn, nil)
	}

	if _, err := m.auth.Login(ctx, email, password); err != nil {
		m.log.Info("login rejected", zap.Error(err))
		return nil, authError(op, err)
	}
	s, err := m.auth.CurrentIdentity(ctx)
	if err == nil && s == nil {
		err = errs.ErrUnauthorized
	}
	if err != nil {
		// token was stored by Login; do not keep a half-established session
		if lerr := m.auth.Logout(ctx); lerr != nil {
			m.log.Warn("discard token after failed identity fetch", zap.Error(lerr))
		}
		return nil, authError(op, err)
	}
	m.set(s)
	m.log.Info("logged in", zap.String("user_id", s.ID.String()))
	return m.Current(), nil
}

// Signup registers an account and then logs in with the same credentials.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (*model.Session, error) {
	const op = "session.signup"
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, errs.New(errs.ErrAuthentication, op, MsgMissingSignup, errs.ErrValidation)
	}
	if m.Current() != nil {
		return nil, errs.New(errs.ErrAuthentication, op, MsgAlreadySignedIn, nil)
	}
	if err := m.auth.Signup(ctx, name, email, password); err != nil {
		m.log.Info("signup rejected", zap.Error(err))
		return nil, authError(op, err)
	}
	return m.Login(ctx, email, password)
}

// Logout drops the session. Remote failures are logged and ignored; calling it
// while anonymous is a no-op apart from the remote call.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn("remote logout failed", zap.Error(err))
	}
	m.mu.Lock()
	changed := m.current != nil
	m.current = nil
	cb := m.onChange
	m.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
}

func (m *Manager) set(s *model.Session) {
	cp := *s
	m.mu.Lock()
	m.current = &cp
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func authError(op string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.New(errs.ErrAuthentication, op, authMessage(err), err)
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		return MsgBadCredentials
	case errors.Is(err, errs.ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, errs.ErrAlreadyExists):
		return MsgEmailTaken
	case errors.Is(err, errs.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), errs.ErrValidation.Error()+": ")
		if msg == "" {
			return MsgGeneric
		}
		r, size := utf8.DecodeRuneInString(msg)
		return string(unicode.ToUpper(r)) + msg[size:] + "."
	default:
		return MsgGeneric
	}
}
