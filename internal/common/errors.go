// Package common defines shared constants and sentinel errors used across
// client and server layers of SecurePass. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input rejected by field validation.
	ErrValidation = errors.New("validation error")

	// Auth errors. Forged, expired and orphaned tokens all collapse into
	// this one value.
	ErrInvalidToken = errors.New("invalid token")

	// Optional feature not configured on this server.
	ErrFeatureDisabled = errors.New("feature disabled")
)
