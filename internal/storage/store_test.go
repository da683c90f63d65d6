package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := OpenFileStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreReadAfterWrite(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.Get(TokenKey)
			assert.False(t, ok)

			require.NoError(t, s.Set(TokenKey, "tok-1"))
			v, ok := s.Get(TokenKey)
			assert.True(t, ok)
			assert.Equal(t, "tok-1", v)

			require.NoError(t, s.Set(TokenKey, "tok-2"))
			v, _ = s.Get(TokenKey)
			assert.Equal(t, "tok-2", v)

			require.NoError(t, s.Clear(TokenKey))
			_, ok = s.Get(TokenKey)
			assert.False(t, ok)

			// clearing a missing key is fine
			require.NoError(t, s.Clear(UserKey))
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(TokenKey, "abc"))
	require.NoError(t, s.Set(UserKey, `{"id":"u1"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get(TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	v, _ = reopened.Get(UserKey)
	assert.Equal(t, `{"id":"u1"}`, v)

	require.NoError(t, reopened.Clear(TokenKey))
	again, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok = again.Get(TokenKey)
	assert.False(t, ok)
}

func TestOpenFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}
