package service

import "errors"

// Sentinel errors shared by all services. Handlers map these to HTTP
// status codes with errors.Is, so wrap them rather than returning new ones.
var (
	// ErrValidation marks a request that failed input validation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing merchant, order, or catalog row.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured marks a merchant missing a required credential,
	// e.g. initiating gateway checkout without a stored access token.
	ErrNotConfigured = errors.New("merchant not configured")

	// ErrUpstream marks a failed payment or messaging gateway call.
	ErrUpstream = errors.New("upstream call failed")

	// ErrConflict marks a uniqueness violation, e.g. a taken email.
	ErrConflict = errors.New("conflict")
)
