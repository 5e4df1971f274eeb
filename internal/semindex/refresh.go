package semindex

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/mantic/internal/errors"
	"github.com/standardbeagle/mantic/internal/types"
)

// RefreshBatchSize bounds the concurrent re-parse batch (spec §4.5).
const RefreshBatchSize = 50

// Delta classifies the enumerator output against the prior index.
type Delta struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// signature returns a fast fingerprint of path+mtime+size for modified/
// added/deleted classification, via xxhash.
func signature(path string, mtime time.Time, size int64) uint64 {
	h := xxhash.New()
	h.WriteString(path)
	h.WriteString(mtime.UTC().Format(time.RFC3339Nano))
	h.WriteString(string(rune(size)))
	return h.Sum64()
}

// Classify computes the added/modified/deleted sets between idx and the
// current enumeration. The three sets are disjoint and their union equals
// the symmetric difference between the two enumerations (spec invariant).
func Classify(root string, idx *types.CacheIndex, current []string) Delta {
	currentSet := make(map[string]bool, len(current))
	for _, p := range current {
		currentSet[p] = true
	}

	var delta Delta
	for _, p := range current {
		prior, ok := idx.Files[p]
		if !ok {
			delta.Added = append(delta.Added, p)
			continue
		}
		info, err := os.Stat(filepath.Join(root, p))
		if err != nil {
			delta.Deleted = append(delta.Deleted, p)
			continue
		}
		if signature(p, info.ModTime(), info.Size()) != signature(p, prior.ModTime, prior.Size) {
			delta.Modified = append(delta.Modified, p)
		}
	}
	for p := range idx.Files {
		if !currentSet[p] {
			delta.Deleted = append(delta.Deleted, p)
		}
	}
	return delta
}

// Refresh applies delta to idx in place: deleted entries are dropped,
// added+modified are re-parsed in bounded-concurrency batches of
// RefreshBatchSize. Unchanged entries are left object-identity stable —
// no re-parse, no reallocation.
func Refresh(ctx context.Context, root string, idx *types.CacheIndex, delta Delta) {
	for _, p := range delta.Deleted {
		delete(idx.Files, p)
	}

	toParse := append(append([]string{}, delta.Added...), delta.Modified...)
	if len(toParse) == 0 {
		return
	}

	entries := make([]*types.FileEntry, len(toParse))

	for batchStart := 0; batchStart < len(toParse); batchStart += RefreshBatchSize {
		batchEnd := batchStart + RefreshBatchSize
		if batchEnd > len(toParse) {
			batchEnd = len(toParse)
		}
		batch := toParse[batchStart:batchEnd]

		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for i, p := range batch {
			idx, p := batchStart+i, p
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				entry := parseFile(root, p)
				mu.Lock()
				entries[idx] = entry
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // per-file parse failures are recorded on the entry, never abort the scan
	}

	for i, p := range toParse {
		if entries[i] != nil {
			idx.Files[p] = entries[i]
		}
	}

	idx.TotalFiles = len(idx.Files)
	idx.LastScan = time.Now()
}

func parseFile(root, relPath string) *types.FileEntry {
	full := filepath.Join(root, relPath)
	info, err := os.Stat(full)
	if err != nil {
		return &types.FileEntry{Path: relPath, ParseError: errors.NewFileError("stat", relPath, err).Error()}
	}

	entry := &types.FileEntry{
		Path:     relPath,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
		ParsedAt: time.Now(),
	}

	lang, ok := LanguageFor(relPath)
	if !ok {
		return entry // not a supported source type: stat-only entry
	}
	entry.Language = lang

	data, err := os.ReadFile(full)
	if err != nil {
		entry.ParseError = errors.NewParseError(relPath, err).Error()
		return entry
	}

	result := ParseSource(relPath, lang, data)
	entry.Exports = result.Exports
	entry.Imports = result.Imports
	entry.Components = result.Components
	entry.Keywords = result.Keywords
	entry.Functions = result.Functions
	entry.Classes = result.Classes
	entry.Types = result.Types
	entry.ParseError = result.ParseError
	return entry
}
