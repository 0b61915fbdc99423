package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// Collaborator Errors.

	// ErrModelUnavailable indicates the AI model is not configured.
	ErrModelUnavailable = errors.New("AI model unavailable")

	// ErrMalformedModelOutput indicates the AI model answered with text
	// that could not be parsed into the requested shape.
	ErrMalformedModelOutput = errors.New("malformed AI model output")

	// ErrStoreNotConfigured indicates no spreadsheet or database is bound.
	ErrStoreNotConfigured = errors.New("store not configured")

	// ErrMailboxNotConfigured indicates no mailbox is bound.
	ErrMailboxNotConfigured = errors.New("mailbox not configured")

	// Authentication Errors.

	// ErrAuthRequired indicates no session token is available.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected upstream.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
