package semindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mantic/internal/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestClassifyDetectsAddedModifiedDeleted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "export const a = 1")
	writeFile(t, root, "src/b.ts", "export const b = 1")

	infoA, err := os.Stat(filepath.Join(root, "src/a.ts"))
	require.NoError(t, err)

	idx := NewEmpty(root)
	idx.Files["src/a.ts"] = &types.FileEntry{Path: "src/a.ts", ModTime: infoA.ModTime(), Size: infoA.Size()}
	idx.Files["src/stale.ts"] = &types.FileEntry{Path: "src/stale.ts"}

	delta := Classify(root, idx, []string{"src/a.ts", "src/b.ts"})

	assert.ElementsMatch(t, []string{"src/b.ts"}, delta.Added)
	assert.Empty(t, delta.Modified)
	assert.ElementsMatch(t, []string{"src/stale.ts"}, delta.Deleted)
}

func TestClassifyDetectsModifiedBySignature(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "export const a = 1")

	idx := NewEmpty(root)
	idx.Files["src/a.ts"] = &types.FileEntry{
		Path:    "src/a.ts",
		ModTime: time.Now().Add(-time.Hour),
		Size:    999,
	}

	delta := Classify(root, idx, []string{"src/a.ts"})
	assert.ElementsMatch(t, []string{"src/a.ts"}, delta.Modified)
	assert.Empty(t, delta.Added)
}

func TestRefreshParsesAddedAndPreservesUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "export function a() {}")
	writeFile(t, root, "src/b.ts", "export function b() {}")

	idx := NewEmpty(root)
	unchanged := &types.FileEntry{Path: "src/keep.ts"}
	idx.Files["src/keep.ts"] = unchanged

	delta := Delta{Added: []string{"src/a.ts", "src/b.ts"}}
	Refresh(context.Background(), root, idx, delta)

	require.Contains(t, idx.Files, "src/a.ts")
	require.Contains(t, idx.Files, "src/b.ts")
	assert.Equal(t, "typescript", idx.Files["src/a.ts"].Language)
	assert.Same(t, unchanged, idx.Files["src/keep.ts"])
	assert.Equal(t, len(idx.Files), idx.TotalFiles)
}

func TestRefreshRemovesDeleted(t *testing.T) {
	root := t.TempDir()
	idx := NewEmpty(root)
	idx.Files["src/gone.ts"] = &types.FileEntry{Path: "src/gone.ts"}

	Refresh(context.Background(), root, idx, Delta{Deleted: []string{"src/gone.ts"}})
	assert.NotContains(t, idx.Files, "src/gone.ts")
}

func TestParseFileMissingRecordsFileError(t *testing.T) {
	root := t.TempDir()
	entry := parseFile(root, "src/missing.ts")
	assert.NotEmpty(t, entry.ParseError)
}

func TestParseFileNonSourceIsStatOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hello")

	entry := parseFile(root, "README.md")
	assert.Empty(t, entry.Language)
	assert.Empty(t, entry.ParseError)
}

func TestRefreshBatchingAcrossMultipleBatches(t *testing.T) {
	root := t.TempDir()
	var added []string
	for i := 0; i < RefreshBatchSize+5; i++ {
		rel := filepath.Join("src", "file"+itoa(i)+".ts")
		writeFile(t, root, rel, "export const x = 1")
		added = append(added, rel)
	}

	idx := NewEmpty(root)
	Refresh(context.Background(), root, idx, Delta{Added: added})
	assert.Equal(t, len(added), idx.TotalFiles)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}
