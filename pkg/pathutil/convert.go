// Package pathutil converts between absolute and repository-relative,
// forward-slash paths. The pipeline enumerates and scores repository-
// relative paths throughout; this package sits at the I/O boundaries
// where an absolute filesystem path needs to become one.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/mantic/internal/types"
)

// ToRelative converts an absolute path to a forward-slash path relative to
// rootDir. Falls back to the original (cleaned) path if conversion fails,
// the path lies outside rootDir, or the path was already relative.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}

	if strings.HasPrefix(relPath, "..") {
		return filepath.ToSlash(absPath)
	}

	return filepath.ToSlash(relPath)
}

// ToRelativeScoredFiles converts every ScoredFile.Path in results from
// absolute to repository-relative, without mutating the input slice.
func ToRelativeScoredFiles(results []types.ScoredFile, rootDir string) []types.ScoredFile {
	if len(results) == 0 {
		return results
	}

	converted := make([]types.ScoredFile, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].Path = ToRelative(converted[i].Path, rootDir)
	}

	return converted
}
