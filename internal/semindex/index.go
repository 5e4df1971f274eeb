// Package semindex implements the semantic index: a persisted CacheIndex
// of imports/exports/identifiers keyed by repository path, refreshed
// incrementally by mtime/size, with an in-process LRU short-circuiting
// re-reads within a 5-minute window (spec §4.5).
package semindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/mantic/internal/errors"
	"github.com/standardbeagle/mantic/internal/types"
	"github.com/standardbeagle/mantic/internal/version"
)

const (
	indexFileName    = "index.json"
	manticDir        = ".mantic"
	lruCapacity      = 3
	lruTTL           = 5 * time.Minute
	maxIndexAge      = 24 * time.Hour
)

type lruEntry struct {
	index    *types.CacheIndex
	loadedAt time.Time
}

// Store persists and loads CacheIndex documents and memoizes recently
// loaded indexes in a capacity-3, project-root-keyed LRU.
type Store struct {
	cache *lru.Cache[string, *lruEntry]
}

// NewStore returns a Store with the spec-mandated capacity-3 LRU.
func NewStore() *Store {
	c, _ := lru.New[string, *lruEntry](lruCapacity)
	return &Store{cache: c}
}

func indexPath(root string) string {
	return filepath.Join(root, manticDir, indexFileName)
}

// Load returns the persisted index for root, short-circuiting through the
// in-process LRU when the cached entry is under 5 minutes old. It returns
// (nil, nil) when no usable index exists — version mismatch, project-root
// mismatch, or age beyond 24h all invalidate silently, per spec §4.5 and
// the index-authority invariant (§3-ii).
func (s *Store) Load(root string) (*types.CacheIndex, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	if entry, ok := s.cache.Get(absRoot); ok && time.Since(entry.loadedAt) < lruTTL {
		return entry.index, nil
	}

	idx, err := s.readFromDisk(absRoot)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, nil
	}

	if !s.isValid(idx, absRoot) {
		return nil, nil
	}

	s.cache.Add(absRoot, &lruEntry{index: idx, loadedAt: time.Now()})
	return idx, nil
}

func (s *Store) readFromDisk(root string) (*types.CacheIndex, error) {
	data, err := os.ReadFile(indexPath(root))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewComponentError("semindex", "read", err)
	}

	var idx types.CacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		// Corrupt index: component-level fallback, triggers rebuild.
		return nil, nil
	}
	return &idx, nil
}

func (s *Store) isValid(idx *types.CacheIndex, root string) bool {
	if idx.Version != version.Version {
		return false
	}
	if idx.ProjectRoot != root {
		return false
	}
	if time.Since(idx.LastScan) > maxIndexAge {
		return false
	}
	return true
}

// Save writes idx to disk via a temp-file + atomic rename and refreshes
// the in-process LRU, and ensures a companion .gitignore exists so the
// index is not version-controlled by default.
func (s *Store) Save(idx *types.CacheIndex) error {
	dir := filepath.Join(idx.ProjectRoot, manticDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewComponentError("semindex", "mkdir", err)
	}
	if err := ensureGitignore(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.NewComponentError("semindex", "marshal", err)
	}

	target := indexPath(idx.ProjectRoot)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.NewComponentError("semindex", "write", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.NewComponentError("semindex", "rename", err)
	}

	s.cache.Add(idx.ProjectRoot, &lruEntry{index: idx, loadedAt: time.Now()})
	return nil
}

func ensureGitignore(dir string) error {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte("*\n!.gitignore\n"), 0o644)
}

// NewEmpty returns a fresh CacheIndex for root, stamped with the running
// code version.
func NewEmpty(root string) *types.CacheIndex {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	return &types.CacheIndex{
		Version:     version.Version,
		LastScan:    time.Now(),
		ProjectRoot: absRoot,
		Files:       make(map[string]*types.FileEntry),
	}
}
