package semindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mantic/internal/types"
	"github.com/standardbeagle/mantic/internal/version"
)

func TestStoreLoadMissingReturnsNilNil(t *testing.T) {
	root := t.TempDir()
	s := NewStore()

	idx, err := s.Load(root)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestStoreSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	s := NewStore()
	idx := NewEmpty(root)
	idx.Files["src/app.ts"] = &types.FileEntry{Path: "src/app.ts"}

	require.NoError(t, s.Save(idx))

	loaded, err := s.Load(root)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Files, 1)
}

func TestStoreSaveWritesGitignore(t *testing.T) {
	root := t.TempDir()
	s := NewStore()
	idx := NewEmpty(root)

	require.NoError(t, s.Save(idx))

	data, err := os.ReadFile(filepath.Join(root, manticDir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "*")
}

func TestStoreLoadInvalidatesOnVersionMismatch(t *testing.T) {
	root := t.TempDir()
	absRoot, _ := filepath.Abs(root)

	idx := &types.CacheIndex{
		Version:     "stale-version",
		LastScan:    time.Now(),
		ProjectRoot: absRoot,
		Files:       map[string]*types.FileEntry{},
	}
	dir := filepath.Join(root, manticDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, _ := json.Marshal(idx)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), data, 0o644))

	s := NewStore()
	loaded, err := s.Load(root)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreLoadInvalidatesOnStaleAge(t *testing.T) {
	root := t.TempDir()
	absRoot, _ := filepath.Abs(root)

	idx := &types.CacheIndex{
		Version:     version.Version,
		LastScan:    time.Now().Add(-48 * time.Hour),
		ProjectRoot: absRoot,
		Files:       map[string]*types.FileEntry{},
	}
	dir := filepath.Join(root, manticDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, _ := json.Marshal(idx)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), data, 0o644))

	s := NewStore()
	loaded, err := s.Load(root)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreLoadCorruptJSONFallsBackToNil(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, manticDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), []byte("{not json"), 0o644))

	s := NewStore()
	loaded, err := s.Load(root)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreLoadUsesLRUWithinTTL(t *testing.T) {
	root := t.TempDir()
	s := NewStore()
	idx := NewEmpty(root)
	require.NoError(t, s.Save(idx))

	first, err := s.Load(root)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Mutate the on-disk file; the LRU entry should still short-circuit.
	absRoot, _ := filepath.Abs(root)
	require.NoError(t, os.WriteFile(filepath.Join(absRoot, manticDir, indexFileName), []byte("garbage"), 0o644))

	second, err := s.Load(root)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Same(t, first, second)
}
