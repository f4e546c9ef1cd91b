package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrDataShortage marks a batch request that cannot be filled: the
	// exclusion set leaves fewer clips than the batch needs, or fewer than
	// the four a quiz needs. Surfaced explicitly instead of truncating.
	ErrDataShortage = errors.New("not enough clips")
)
