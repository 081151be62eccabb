// Package common contains shared constants and sentinel errors used across
// the portal client components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token value in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"
)
