// Package notify carries transient user-facing notifications (loading,
// success, error, dismiss) from the services to whatever displays them.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindDismiss Kind = "dismiss"
)

type Notification struct {
	ID   string
	Kind Kind
	Text string
	At   time.Time
}

// Notifier is what services use to raise notifications. Loading returns the
// id later passed to Dismiss.
type Notifier interface {
	Loading(ctx context.Context, text string) string
	Success(ctx context.Context, text string)
	Error(ctx context.Context, text string)
	Dismiss(ctx context.Context, id string)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Loading(context.Context, string) string { return "" }
func (Nop) Success(context.Context, string)        {}
func (Nop) Error(context.Context, string)          {}
func (Nop) Dismiss(context.Context, string)        {}
