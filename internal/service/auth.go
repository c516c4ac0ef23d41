// Package service contains application services for accounts and facts.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/factshare/internal/crypto"
	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/limiter"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// MinPasswordLen is the shortest password Signup accepts.
const MinPasswordLen = 6

// tokenLeeway tolerates small clock skew between issuer and verifier.
const tokenLeeway = 30 * time.Second

// AuthService defines account and session operations.
type AuthService interface {
	// Signup creates a new account with a hashed password.
	Signup(ctx context.Context, name, email, password string) (uuid.UUID, error)
	// LoginWithIP applies rate-limiting, verifies credentials and opens a session.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	// Authenticate verifies an access token and returns its user and session ID.
	Authenticate(ctx context.Context, token string) (model.User, uuid.UUID, error)
	// Logout closes a session.
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	hasher    pkgcrypto.Hasher
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:     users,
		sessions:  sessions,
		signKey:   signKey,
		accessTTL: accessTTL,
		lim:       lim,
		hasher:    pkgcrypto.NewHasher(pkgcrypto.DefaultParams),
		now:       time.Now,
	}
}

// WithHasherParams replaces the password hashing cost; existing hashes stop verifying.
func (s *AuthServiceImpl) WithHasherParams(p pkgcrypto.Params) *AuthServiceImpl {
	s.hasher = pkgcrypto.NewHasher(p)
	return s
}

// NormalizeEmail trims and lower-cases an address; emails are compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(name, email, password string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	case email == "":
		return fmt.Errorf("%w: email is required", errs.ErrValidation)
	case len(password) < MinPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return fmt.Errorf("%w: email is not valid", errs.ErrValidation)
	}
	return nil
}

// Signup creates a new user record with a per-user salt.
func (s *AuthServiceImpl) Signup(ctx context.Context, name, email, password string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if err := validateSignup(name, email, password); err != nil {
		return uuid.Nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	hash, salt, err := s.hasher.New([]byte(password))
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.User{
		ID:       uid,
		Name:     name,
		Email:    email,
		PwdHash:  hash,
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	return uid, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.Tokens{}, model.User{}, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !s.hasher.Verify([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same to the caller
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// best-effort
	_ = s.lim.Success(ctx, email, ipHash)

	now := s.now()
	sess := &model.AuthSession{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.accessTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return model.Tokens{}, model.User{}, err
	}

	access, err := s.issueAccessToken(u.ID, sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: sess.ExpiresAt}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT whose jti names the session.
func (s *AuthServiceImpl) issueAccessToken(userID, sessionID uuid.UUID, now, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        sessionID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

// Authenticate verifies HS256 signature, time claims and the backing session.
// Every failure is reported as errs.ErrUnauthorized.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (model.User, uuid.UUID, error) {
	userID, sessionID, err := s.parseToken(token)
	if err != nil {
		return model.User{}, uuid.Nil, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, uuid.Nil, fmt.Errorf("%w: session closed", errs.ErrUnauthorized)
		}
		return model.User{}, uuid.Nil, err
	}
	if sess.UserID != userID || !sess.ExpiresAt.After(s.now()) {
		return model.User{}, uuid.Nil, fmt.Errorf("%w: session expired", errs.ErrUnauthorized)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, uuid.Nil, fmt.Errorf("%w: user gone", errs.ErrUnauthorized)
		}
		return model.User{}, uuid.Nil, err
	}
	return *u, sess.ID, nil
}

func (s *AuthServiceImpl) parseToken(token string) (userID, sessionID uuid.UUID, err error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(tokenLeeway), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, errors.New("invalid token")
	}
	if userID, err = uuid.FromString(claims.Subject); err != nil {
		return uuid.Nil, uuid.Nil, errors.New("bad subject")
	}
	if sessionID, err = uuid.FromString(claims.ID); err != nil {
		return uuid.Nil, uuid.Nil, errors.New("bad token id")
	}
	return userID, sessionID, nil
}

// Logout deletes the session; closing an already closed session is not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return fmt.Errorf("%w: no session", errs.ErrUnauthorized)
	}
	return s.sessions.Delete(ctx, sessionID)
}
