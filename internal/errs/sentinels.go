// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials, missing or stale token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates malformed input rejected before any storage access.
	ErrValidation = errors.New("validation failed")
)

// Kinds of failure surfaced to the user by the client controller.
var (
	ErrAuthentication = errors.New("authentication error")
	ErrLoad           = errors.New("load error")
	ErrWrite          = errors.New("write error")
	ErrConnectivity   = errors.New("connectivity error")
)
