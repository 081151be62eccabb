// Package common defines shared constants and sentinel errors used across
// the client layers of the portal. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Validation errors raised before any network call is made.
	ErrValidation = errors.New("validation error")

	// Token errors (malformed or expired bearer token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
