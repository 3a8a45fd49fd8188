package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStreamAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	stored, err := store.SaveStream("2026/09/invoice.pdf", strings.NewReader("payload"))
	require.NoError(t, err)
	require.Equal(t, "2026/09/invoice.pdf", stored)

	file, err := store.Open(stored)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	content, err := os.ReadFile(store.Path(stored))
	require.NoError(t, err)
	require.Equal(t, "payload", string(content))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	baseDir := t.TempDir()
	store, err := NewLocalStorage(baseDir)
	require.NoError(t, err)

	orphan, err := store.SaveStream("2026/08/orphan.bin", strings.NewReader("stale"))
	require.NoError(t, err)
	fresh, err := store.SaveStream("2026/09/fresh.bin", strings.NewReader("current"))
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(orphan), stale, stale))

	removed, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.FromSlash("2026/08/orphan.bin")}, removed)

	_, err = os.Stat(store.Path(orphan))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.Path(fresh))
	require.NoError(t, err)
}

func TestLocalStorageCleanupKeepsEverythingWithinTTL(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	stored, err := store.SaveStream("doc.pdf", strings.NewReader("recent"))
	require.NoError(t, err)

	removed, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Empty(t, removed)

	_, err = os.Stat(store.Path(stored))
	require.NoError(t, err)
}
