package pathutil

import (
	"testing"

	"github.com/standardbeagle/mantic/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"simple relative path", "/home/user/project/src/main.go", "/home/user/project", "src/main.go"},
		{"nested relative path", "/home/user/project/internal/core/search.go", "/home/user/project", "internal/core/search.go"},
		{"root level file", "/home/user/project/README.md", "/home/user/project", "README.md"},
		{"same directory", "/home/user/project", "/home/user/project", "."},
		{"already relative path", "src/main.go", "/home/user/project", "src/main.go"},
		{"path outside root falls back to absolute", "/other/location/file.go", "/home/user/project", "/other/location/file.go"},
		{"empty root directory", "/home/user/project/file.go", "", "/home/user/project/file.go"},
		{"empty absolute path", "", "/home/user/project", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.absPath, tt.rootDir))
		})
	}
}

func TestToRelativeScoredFiles(t *testing.T) {
	rootDir := "/home/user/project"
	input := []types.ScoredFile{
		{Path: "/home/user/project/src/main.go", Score: 120, Reasons: []string{"filename-match"}},
		{Path: "/home/user/project/internal/core/search.go", Score: 80},
		{Path: "/home/user/project/README.md", Score: 10},
	}

	results := ToRelativeScoredFiles(input, rootDir)

	expected := []string{"src/main.go", "internal/core/search.go", "README.md"}
	require := make([]string, len(results))
	for i, r := range results {
		require[i] = r.Path
	}
	assert.Equal(t, expected, require)

	assert.Equal(t, input[0].Score, results[0].Score)
	assert.Equal(t, input[0].Reasons, results[0].Reasons)
}

func TestToRelativeScoredFilesDoesNotMutateInput(t *testing.T) {
	rootDir := "/home/user/project"
	input := []types.ScoredFile{{Path: "/home/user/project/src/main.go"}}

	_ = ToRelativeScoredFiles(input, rootDir)

	assert.Equal(t, "/home/user/project/src/main.go", input[0].Path)
}

func TestToRelativeScoredFilesEmptySlice(t *testing.T) {
	result := ToRelativeScoredFiles(nil, "/home/user/project")
	assert.Len(t, result, 0)
}
