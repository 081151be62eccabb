package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*FileStore, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return NewFileStore(fsys, "/data/portal"), fsys
}

func TestFileStore_SetGetDelete(t *testing.T) {
	s, fsys := newFileStore(t)
	ctx := context.Background()

	v, err := s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, s.Set(ctx, "auth-storage", []byte(`{"token":"t"}`)))
	v, err = s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"token":"t"}`), v)

	ok, err := afero.Exists(fsys, "/data/portal/auth-storage.json")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "auth-storage"))
	require.NoError(t, s.Delete(ctx, "auth-storage"))
	v, err = s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileStore_KeysAreEscaped(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a/b c", []byte("x")))

	m, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a/b c": []byte("x")}, m)
}

func TestFileStore_ListOnMissingDirIsEmpty(t *testing.T) {
	s, _ := newFileStore(t)

	m, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestFileStore_ClearIgnoresForeignFiles(t *testing.T) {
	s, fsys := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, afero.WriteFile(fsys, "/data/portal/README.txt", []byte("keep"), 0o600))

	require.NoError(t, s.Clear(ctx))

	m, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	ok, err := afero.Exists(fsys, "/data/portal/README.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_AtomicAppliesOnlyOnSuccess(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", []byte("1")))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		require.NoError(t, repo.Delete(ctx, "a"))
		require.NoError(t, repo.Set(ctx, "b", []byte("2")))

		v, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, v)

		v, err = repo.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), v)
		return boom
	})
	require.ErrorIs(t, err, boom)

	m, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1")}, m)

	require.NoError(t, s.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		return repo.Set(ctx, "c", []byte("3"))
	}))

	m, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"c": []byte("3")}, m)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		st, err := Open(ctx, fsys, BackendFile, "/var/portal")
		require.NoError(t, err)
		defer st.Close()

		_, ok := st.(*FileStore)
		assert.True(t, ok)
		exists, err := afero.DirExists(fsys, "/var/portal")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("sqlite in memory", func(t *testing.T) {
		st, err := Open(ctx, afero.NewMemMapFs(), BackendSQLite, ":memory:")
		require.NoError(t, err)
		defer st.Close()

		require.NoError(t, st.Set(ctx, "k", []byte("v")))
		v, err := st.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, afero.NewMemMapFs(), "redis", "x")
		require.Error(t, err)
	})
}
