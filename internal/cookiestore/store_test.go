package cookiestore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "cookies.json"))
	want := Record{"session": "test123", "token": "abc"}

	require.NoError(t, store.Save(want))

	got, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSave_OverwritesExisting(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "cookies.json"))

	require.NoError(t, store.Save(Record{"session": "old"}))
	require.NoError(t, store.Save(Record{"session": "new"}))

	got, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, Record{"session": "new"}, got)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSave_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix permissions not applicable on Windows")
	}

	path := filepath.Join(t.TempDir(), "cookies.json")
	store := New(path)
	require.NoError(t, store.Save(Record{"session": "test123", "token": "abc"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix permissions not applicable on Windows")
	}

	base := t.TempDir()
	path := filepath.Join(base, "nested", "path", "cookies.json")
	store := New(path)
	require.NoError(t, store.Save(Record{"session": "test"}))

	for _, dir := range []string{filepath.Join(base, "nested"), filepath.Join(base, "nested", "path")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm(), dir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nonexistent.json"))

	got, ok := store.Load()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	got, ok := New(path).Load()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoad_CorruptFileIsRemoved(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken json", "{broken json content"},
		{"not an object", `["a", "b"]`},
		{"non-string values", `{"session": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "corrupt.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			got, ok := New(path).Load()
			assert.False(t, ok)
			assert.Nil(t, got)

			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err), "corrupt file should be removed")
		})
	}
}

func TestLoad_RecordlessFileIsRemoved(t *testing.T) {
	for _, content := range []string{"{}", "null", " null\n"} {
		t.Run(content, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cookies.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			got, ok := New(path).Load()
			assert.False(t, ok)
			assert.Nil(t, got)
			assert.NoFileExists(t, path)
		})
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store := New(path)
	require.NoError(t, store.Save(Record{"session": "test"}))

	require.NoError(t, store.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestClear_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nonexistent.json"))
	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Clear())
}
