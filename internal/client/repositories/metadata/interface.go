// Package metadata is the durable key/value storage behind the portal's
// persisted stores (session, pending registration, profile cache, form
// drafts). Two backends exist: SQLite (default) and a directory of JSON
// files on an afero filesystem.
//
// Get returns (nil, nil) when the key is absent.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Store is a Repository that can also group several operations so they
// apply together or not at all.
//
// Inside Atomic, fn must use the Repository it is given, never the Store
// itself.
type Store interface {
	Repository
	Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Close() error
}
