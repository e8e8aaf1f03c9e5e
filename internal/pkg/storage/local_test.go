package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutAndExists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	ctx := context.Background()
	key := "statements/owner-1/42.csv"

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, key, strings.NewReader("id,change\n1,5\n"), "text/csv"))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "id,change\n1,5\n", string(data))
	assert.Equal(t, "http://localhost:8080/files/statements/owner-1/42.csv", store.GetURL(key))
}

func TestLocalStorageKeysStayInsideBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "base"), "")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "../escape.csv", strings.NewReader("x"), "text/csv"))

	_, err = os.Stat(filepath.Join(dir, "escape.csv"))
	assert.True(t, os.IsNotExist(err), "object must not be written outside base path")
	_, err = os.Stat(filepath.Join(dir, "base", "escape.csv"))
	assert.NoError(t, err)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "ftp"})
	assert.Error(t, err)
}
