package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDLDefaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultExactFilenameMatch, cfg.Scoring.ExactFilenameMatch)
	assert.Equal(t, DefaultTopN, cfg.Scoring.TopN)
	assert.True(t, cfg.Enumerate.RespectGitignore)
}

func TestParseKDLScoringOverrides(t *testing.T) {
	content := `
scoring {
    business_logic_multiplier 2.0
    test_penalty -60.0
    top_n 50
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Scoring.BusinessLogicMultiplier)
	assert.Equal(t, -60.0, cfg.Scoring.TestPenalty)
	assert.Equal(t, 50, cfg.Scoring.TopN)
}

func TestParseKDLEnumerateOverrides(t *testing.T) {
	content := `
enumerate {
    max_file_count 1000
    respect_gitignore false
    watch_mode true
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Enumerate.MaxFileCount)
	assert.False(t, cfg.Enumerate.RespectGitignore)
	assert.True(t, cfg.Enumerate.WatchMode)
	assert.True(t, cfg.FeatureFlags.EnableWatchMode)
}

func TestParseKDLExcludeOverridesDefaults(t *testing.T) {
	content := `
exclude {
    "**/custom/**"
    "**/*.generated.go"
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/custom/**", "**/*.generated.go"}, cfg.Exclude)
}

func TestLoadKDLMissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLResolvesRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	kdlPath := filepath.Join(dir, ".mantic.kdl")
	require.NoError(t, os.WriteFile(kdlPath, []byte("project {\n    root \".\"\n}\n"), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, dir, cfg.Project.Root)
}

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"10MB": 10 * 1024 * 1024,
		"1GB":  1024 * 1024 * 1024,
		"512KB": 512 * 1024,
		"100B": 100,
		"100":  100,
	}
	for input, want := range cases {
		got, err := parseSize(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}
