// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication. Login returns it for both
	// unknown names and wrong passwords so callers cannot probe for accounts.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrPartialWrite indicates a batch append that failed after some rows were
	// already persisted. The store is left in its partial state.
	ErrPartialWrite = errors.New("partial write")
)

// Token verification sentinels. The HTTP boundary collapses all three into one
// generic auth failure; the split exists for logs and tests only.
var (
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrSignatureInvalid indicates the signature does not recompute.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired indicates a well-formed, correctly signed but expired token.
	ErrTokenExpired = errors.New("token expired")
)
