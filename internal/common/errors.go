package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Circulation errors.
	ErrUnknownReference = errors.New("unknown reference")
	ErrAlreadyBorrowed  = errors.New("book already borrowed by this user")
	ErrBookUnavailable  = errors.New("book not available")
	ErrLoanNotFound     = errors.New("loan not found")

	// ErrIntegrityFault means the ledger and the availability counters
	// disagree. It is reported to operators and never fixed silently.
	ErrIntegrityFault = errors.New("integrity fault")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
