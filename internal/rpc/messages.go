package rpc

import "time"

// User is the public part of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type MeRequest struct{}

type MeResponse struct {
	User User `json:"user"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

// Fact is the wire form of a fact. Author is set only when requested.
type Fact struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sort directions accepted by ListFactsRequest.Order.
const (
	OrderDesc = "desc"
	OrderAsc  = "asc"
)

type ListFactsRequest struct {
	IncludeAuthor bool   `json:"include_author"`
	Order         string `json:"order,omitempty"` // "desc" (default) or "asc"
}

type ListFactsResponse struct {
	Facts []Fact `json:"facts"`
}

type CreateFactRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type CreateFactResponse struct {
	Fact Fact `json:"fact"`
}

// UpdateFactRequest carries only the fields to change.
type UpdateFactRequest struct {
	ID       string  `json:"id"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

type UpdateFactResponse struct {
	Fact Fact `json:"fact"`
}

type DeleteFactRequest struct {
	ID string `json:"id"`
}

type DeleteFactResponse struct{}
