package enumerate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func TestEnumerateWalkerFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.go")
	writeFile(t, root, "node_modules/pkg/index.js")
	writeFile(t, root, "README.md")

	res := Enumerate(context.Background(), Options{Root: root, WalkerMaxDepth: 10})

	assert.Contains(t, res.Files, "src/main.go")
	assert.Contains(t, res.Files, "README.md")
	assert.NotContains(t, res.Files, "node_modules/pkg/index.js")
}

func TestEnumerateIgnoresBuiltinPrefixes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dist/bundle.js")
	writeFile(t, root, "vendor/lib.go")
	writeFile(t, root, "src/app.go")

	res := Enumerate(context.Background(), Options{Root: root})

	assert.Contains(t, res.Files, "src/app.go")
	assert.NotContains(t, res.Files, "dist/bundle.js")
	assert.NotContains(t, res.Files, "vendor/lib.go")
}

func TestEnumerateCustomIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/generated_pb.go")
	writeFile(t, root, "src/main.go")

	res := Enumerate(context.Background(), Options{
		Root:           root,
		IgnorePatterns: ParseIgnoreEnv("**/*_pb.go"),
	})

	assert.Contains(t, res.Files, "src/main.go")
	assert.NotContains(t, res.Files, "src/generated_pb.go")
}

func TestEnumerateTimeoutYieldsEmptyResult(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.go")

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond)

	res := Enumerate(ctx, Options{Root: root, ScanTimeout: 30 * time.Second})
	assert.Empty(t, res.Files)
	assert.True(t, res.TimedOut)
}

func TestParseIgnoreEnvEmpty(t *testing.T) {
	assert.Nil(t, ParseIgnoreEnv(""))
}

func TestParseIgnoreEnvSplitsAndTrims(t *testing.T) {
	got := ParseIgnoreEnv("*.foo, *.bar ,baz/**")
	assert.Equal(t, []string{"*.foo", "*.bar", "baz/**"}, got)
}
