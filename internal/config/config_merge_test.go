package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigsCombinesExclusions(t *testing.T) {
	base := &Config{Exclude: []string{"**/base/**", "**/shared/**"}}
	project := &Config{Exclude: []string{"**/project/**", "**/shared/**"}}

	merged := mergeConfigs(base, project)

	assert.Contains(t, merged.Exclude, "**/base/**")
	assert.Contains(t, merged.Exclude, "**/project/**")
	assert.Contains(t, merged.Exclude, "**/shared/**")

	seen := map[string]int{}
	for _, e := range merged.Exclude {
		seen[e]++
	}
	assert.Equal(t, 1, seen["**/shared/**"], "duplicate exclusions must be deduplicated")
}

func TestMergeConfigsProjectIncludeWins(t *testing.T) {
	base := &Config{Include: []string{"**/*.go"}}
	project := &Config{Include: []string{"**/*.ts"}}

	merged := mergeConfigs(base, project)
	assert.Equal(t, []string{"**/*.ts"}, merged.Include)
}

func TestMergeConfigsFallsBackToBaseInclude(t *testing.T) {
	base := &Config{Include: []string{"**/*.go"}}
	project := &Config{Include: []string{}}

	merged := mergeConfigs(base, project)
	assert.Equal(t, []string{"**/*.go"}, merged.Include)
}

func TestDefaultPopulatesScoringConstants(t *testing.T) {
	cfg := Default(t.TempDir())

	require.NotNil(t, cfg)
	assert.Equal(t, DefaultExactFilenameMatch, cfg.Scoring.ExactFilenameMatch)
	assert.Equal(t, DefaultTestPenalty, cfg.Scoring.TestPenalty)
	assert.Equal(t, DefaultTopN, cfg.Scoring.TopN)
	assert.NotEmpty(t, cfg.Scoring.ExtensionWeights)
	assert.NotEmpty(t, cfg.Scoring.DirectoryWeights["backend"])
}

func TestDefaultSetsProjectRoot(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	assert.Equal(t, dir, cfg.Project.Root)
}
