package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("backup_a.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	_, err = store.Save("backup_b.json", []byte(`{"b":2}`))
	require.NoError(t, err)
	_, err = store.Save("notes.txt", []byte("x"))
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "backup_a.json"), old, old))

	files, err := store.List(".json")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "backup_b.json", files[0].Name)
	assert.Equal(t, "backup_a.json", files[1].Name)

	rc, info, err := store.Open("backup_b.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(body))
	assert.EqualValues(t, 7, info.Size)

	assert.True(t, store.Exists("backup_a.json"))
	require.NoError(t, store.Delete("backup_a.json"))
	assert.False(t, store.Exists("backup_a.json"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.json", []byte("x"))
	assert.Error(t, err)
	_, _, err = store.Open("/etc/passwd")
	assert.Error(t, err)
	assert.False(t, store.Exists(""))
}
