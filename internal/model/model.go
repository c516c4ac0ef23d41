// Package model defines domain entities shared by the client, services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Session is the identity of the authenticated actor on the client side.
type Session struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Author is the user a fact is attributed to.
type Author struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Fact is a single posted entry.
type Fact struct {
	ID        uuid.UUID // assigned remotely, uuid.Nil until persisted
	Title     string
	Content   string
	Category  Category
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Merge returns f with every non-zero field of upd applied on top of it.
// Fields absent from upd keep their current values.
func (f Fact) Merge(upd Fact) Fact {
	if upd.ID != uuid.Nil {
		f.ID = upd.ID
	}
	if upd.Title != "" {
		f.Title = upd.Title
	}
	if upd.Content != "" {
		f.Content = upd.Content
	}
	if upd.Category != "" {
		f.Category = upd.Category
	}
	if upd.Author.ID != uuid.Nil {
		f.Author.ID = upd.Author.ID
	}
	if upd.Author.Name != "" {
		f.Author.Name = upd.Author.Name
	}
	if upd.Author.Email != "" {
		f.Author.Email = upd.Author.Email
	}
	if !upd.CreatedAt.IsZero() {
		f.CreatedAt = upd.CreatedAt
	}
	if !upd.UpdatedAt.IsZero() {
		f.UpdatedAt = upd.UpdatedAt
	}
	return f
}

// Order selects listing direction by creation time.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// FactQuery describes a list request.
type FactQuery struct {
	IncludeAuthor bool
	Order         Order
}

// User represents an account stored on the server. Passwords are never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Name      string
	Email     string // unique, lower-cased
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// AuthSession is a server-side login session; its ID is the token's jti.
type AuthSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
