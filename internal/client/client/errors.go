package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
	ErrMalformedResponse     = errors.New("malformed response")
)

// APIError is a response the backend rejected, either with a non-2xx
// status or with success:false in the envelope. Message is the backend's
// own text and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return nil
	}
}

// Message returns the text to show the user for err: the backend message
// when there is one, fallback otherwise.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
