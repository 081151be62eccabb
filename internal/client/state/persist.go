package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ghosiportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ghosiportal/internal/logging"
)

// Persisted is the on-disk shape of a persisted store.
type Persisted[P any] struct {
	State   P   `json:"state"`
	Version int `json:"version"`
}

// Persist writes partialize(state) under key after every change whose
// persisted part differs from the last write. Write failures are logged,
// never returned: the in-memory state stays authoritative.
func Persist[S, P any](
	ctx context.Context,
	st *Store[S],
	repo metadata.Repository,
	key string,
	version int,
	partialize func(S) P,
	log logging.Logger,
) (unsubscribe func()) {
	var (
		mu   sync.Mutex
		last []byte
	)

	return st.Subscribe(func(_, next S) {
		b, err := json.Marshal(Persisted[P]{State: partialize(next), Version: version})
		if err != nil {
			log.Error(ctx, "encode persisted state", "key", key, "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if bytes.Equal(b, last) {
			return
		}
		if err := repo.Set(ctx, key, b); err != nil {
			log.Warn(ctx, "persist state", "key", key, "error", err)
			return
		}
		last = b
	})
}

// Rehydrate loads the value stored under key. found is false when the key
// is absent or was written with another version; such entries are left for
// the caller to discard.
func Rehydrate[P any](ctx context.Context, repo metadata.Repository, key string, version int) (value P, found bool, err error) {
	b, err := repo.Get(ctx, key)
	if err != nil {
		return value, false, err
	}
	if b == nil {
		return value, false, nil
	}

	var p Persisted[P]
	if err := json.Unmarshal(b, &p); err != nil {
		return value, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if p.Version != version {
		return value, false, nil
	}
	return p.State, true, nil
}
