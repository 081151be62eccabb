package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const fileExt = ".json"

// FileStore keeps one file per key under dir. Keys are path-escaped, so
// any string is a valid key.
type FileStore struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

func NewFileStore(fsys afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fsys, dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(key, value)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(key)
}

func (s *FileStore) List(ctx context.Context) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear()
}

// Atomic stages fn's writes and applies them only when fn succeeds. The
// store stays locked for the duration of fn.
func (s *FileStore) Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fileTx{parent: s, staged: map[string][]byte{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.apply()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) set(key string, value []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	// write-then-rename so a crash never leaves a half-written value
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0o600); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *FileStore) delete(key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *FileStore) list() (map[string][]byte, error) {
	result := make(map[string][]byte)

	infos, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	for _, fi := range infos {
		name := fi.Name()
		if fi.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to list metadata: %w", err)
		}
		result[key] = data
	}
	return result, nil
}

func (s *FileStore) clear() error {
	all, err := s.list()
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	for key := range all {
		if err := s.delete(key); err != nil {
			return fmt.Errorf("failed to clear metadata: %w", err)
		}
	}
	return nil
}

// fileTx buffers writes for FileStore.Atomic. A nil staged value marks a
// deletion.
type fileTx struct {
	parent  *FileStore
	staged  map[string][]byte
	cleared bool
}

func (t *fileTx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		return v, nil
	}
	if t.cleared {
		return nil, nil
	}
	return t.parent.get(key)
}

func (t *fileTx) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	t.staged[key] = value
	return nil
}

func (t *fileTx) Delete(ctx context.Context, key string) error {
	t.staged[key] = nil
	return nil
}

func (t *fileTx) List(ctx context.Context) (map[string][]byte, error) {
	result := make(map[string][]byte)
	if !t.cleared {
		base, err := t.parent.list()
		if err != nil {
			return nil, err
		}
		result = base
	}
	for k, v := range t.staged {
		if v == nil {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result, nil
}

func (t *fileTx) Clear(ctx context.Context) error {
	t.cleared = true
	t.staged = map[string][]byte{}
	return nil
}

func (t *fileTx) apply() error {
	if t.cleared {
		if err := t.parent.clear(); err != nil {
			return err
		}
	}
	for k, v := range t.staged {
		if v == nil {
			if err := t.parent.delete(k); err != nil {
				return err
			}
			continue
		}
		if err := t.parent.set(k, v); err != nil {
			return err
		}
	}
	return nil
}
