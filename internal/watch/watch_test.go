package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("x"), 0o644))

	changed := make(chan []string, 4)
	w, err := New(root, 50*time.Millisecond, func(paths []string) { changed <- paths })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("y"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case paths := <-changed:
		assert.Contains(t, paths, "a.ts")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced change notification")
	}
}

func TestIsIgnoredDirMatchesKnownNames(t *testing.T) {
	assert.True(t, isIgnoredDir("/repo/node_modules"))
	assert.True(t, isIgnoredDir("/repo/.git"))
	assert.False(t, isIgnoredDir("/repo/src"))
}

func TestShouldIgnoreMatchesNestedPath(t *testing.T) {
	assert.True(t, shouldIgnore("/repo/node_modules/pkg/index.js"))
	assert.False(t, shouldIgnore("/repo/src/index.js"))
}
