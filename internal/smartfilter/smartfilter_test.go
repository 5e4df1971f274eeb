package smartfilter

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

func newIndex() *types.CacheIndex {
	return &types.CacheIndex{Files: map[string]*types.FileEntry{}}
}

func TestApplicableRequiresConfidenceAndCategory(t *testing.T) {
	idx := newIndex()
	assert.False(t, Applicable(nil, types.IntentAnalysis{Confidence: 0.9, Category: types.IntentAuth}))
	assert.False(t, Applicable(idx, types.IntentAnalysis{Confidence: 0.4, Category: types.IntentAuth}))
	assert.False(t, Applicable(idx, types.IntentAnalysis{Confidence: 0.9, Category: types.IntentGeneral}))
	assert.True(t, Applicable(idx, types.IntentAnalysis{Confidence: 0.9, Category: types.IntentAuth}))
}

func TestRescoreExportMatchBoostsScore(t *testing.T) {
	idx := newIndex()
	idx.Files["src/auth.service.ts"] = &types.FileEntry{
		Path:    "src/auth.service.ts",
		Exports: []types.ExportEntry{{Name: "login", Kind: "function"}},
	}
	idx.Files["src/caller.ts"] = &types.FileEntry{
		Path:    "src/caller.ts",
		Imports: []types.ImportEntry{{Source: "./auth.service"}},
	}

	candidates := []types.ScoredFile{{Path: "src/auth.service.ts", Score: 10}}
	intent := types.IntentAnalysis{Category: types.IntentAuth, Confidence: 0.9, Keywords: []string{"login"}}

	out := Rescore(candidates, idx, intent, Options{})
	require.Len(t, out, 1)
	assert.Greater(t, out[0].Score, 10.0)
	assert.Contains(t, out[0].Reasons, "export-match")
	assert.Contains(t, out[0].Reasons, "usage")
}

func TestRescoreUsageSignal(t *testing.T) {
	idx := newIndex()
	idx.Files["src/stripe.service.ts"] = &types.FileEntry{
		Path:    "src/stripe.service.ts",
		Exports: []types.ExportEntry{{Name: "charge", Kind: "function"}},
	}
	idx.Files["src/checkout.ts"] = &types.FileEntry{
		Path:    "src/checkout.ts",
		Imports: []types.ImportEntry{{Source: "./stripe.service"}},
	}

	candidates := []types.ScoredFile{
		{Path: "src/stripe.service.ts", Score: 5},
		{Path: "src/checkout.ts", Score: 5},
	}
	intent := types.IntentAnalysis{Category: types.IntentBackend, Confidence: 0.9, Keywords: []string{"stripe"}}

	out := Rescore(candidates, idx, intent, Options{})
	for _, f := range out {
		if f.Path == "src/stripe.service.ts" {
			assert.Contains(t, f.Reasons, "usage")
		}
	}
}

func TestRescoreDeterministicOrdering(t *testing.T) {
	idx := newIndex()
	idx.Files["src/b.ts"] = &types.FileEntry{Path: "src/b.ts"}
	idx.Files["src/a.ts"] = &types.FileEntry{Path: "src/a.ts"}

	candidates := []types.ScoredFile{
		{Path: "src/b.ts", Score: 10},
		{Path: "src/a.ts", Score: 10},
	}
	intent := types.IntentAnalysis{Category: types.IntentBackend, Confidence: 0.9}
	out := Rescore(candidates, idx, intent, Options{})
	assert.Equal(t, "src/a.ts", out[0].Path)
}

func TestApplyRecencyBoostFromVCS(t *testing.T) {
	idx := newIndex()
	idx.Files["src/a.ts"] = &types.FileEntry{Path: "src/a.ts"}

	files := []types.ScoredFile{{Path: "src/a.ts", Score: 10}}
	applyRecencyBoost(files, idx, map[string]bool{"src/a.ts": true})
	assert.Equal(t, 210.0, files[0].Score)
	assert.Contains(t, files[0].Reasons, "recently-modified")
}

func TestApplyRecencyBoostFromIndexMtime(t *testing.T) {
	idx := newIndex()
	idx.Files["src/a.ts"] = &types.FileEntry{Path: "src/a.ts", ModTime: time.Now().Add(-2 * time.Minute)}

	files := []types.ScoredFile{{Path: "src/a.ts", Score: 10}}
	applyRecencyBoost(files, idx, nil)
	assert.Equal(t, 210.0, files[0].Score)
}

func TestContextCarryoverExclusiveFilter(t *testing.T) {
	prior := &ContextPointer{
		Keywords: []string{"auth", "login", "session"},
		Paths:    []string{"src/auth.ts"},
	}
	intent := types.IntentAnalysis{Keywords: []string{"auth", "login", "session"}}
	files := []types.ScoredFile{
		{Path: "src/auth.ts", Score: 10},
		{Path: "src/unrelated.ts", Score: 50},
	}
	out := applyContextCarryover(files, intent, prior)
	require.Len(t, out, 1)
	assert.Equal(t, "src/auth.ts", out[0].Path)
}

func TestContextCarryoverLowerOverlapBoosts(t *testing.T) {
	prior := &ContextPointer{
		Keywords: []string{"auth", "login", "session", "extra"},
		Paths:    []string{"src/auth.ts"},
	}
	intent := types.IntentAnalysis{Keywords: []string{"auth", "login", "session", "extra2"}}
	files := []types.ScoredFile{{Path: "src/auth.ts", Score: 10}}

	out := applyContextCarryover(files, intent, prior)
	require.Len(t, out, 1)
	assert.Equal(t, 160.0, out[0].Score)
	assert.Contains(t, out[0].Reasons, "context-carryover")
}

func TestContextCarryoverBelowThresholdNoOp(t *testing.T) {
	prior := &ContextPointer{Keywords: []string{"billing"}, Paths: []string{"src/billing.ts"}}
	intent := types.IntentAnalysis{Keywords: []string{"auth", "login"}}
	files := []types.ScoredFile{{Path: "src/auth.ts", Score: 10}}

	out := applyContextCarryover(files, intent, prior)
	assert.Equal(t, 10.0, out[0].Score)
}

func TestKeywordOverlap(t *testing.T) {
	assert.Equal(t, 1.0, keywordOverlap([]string{"a", "b"}, []string{"A", "B", "C"}))
	assert.Equal(t, 0.5, keywordOverlap([]string{"a", "b"}, []string{"a"}))
}

func TestPrimaryKeywordSkipsGenericAndFilenames(t *testing.T) {
	assert.Equal(t, "checkout", primaryKeyword([]string{"button", "checkout", "ui"}))
	assert.Equal(t, "", primaryKeyword([]string{"app.ts", "ui"}))
}

func TestWithExactLinesFindsOccurrences(t *testing.T) {
	root := t.TempDir()
	content := "function x() {}\nconst msg = \"please login now\"\nreturn <div>login</div>\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.tsx"), []byte(content), 0o644))

	files := []types.ScoredFile{{Path: "a.tsx", Score: 10}}
	intent := types.IntentAnalysis{Keywords: []string{"login"}}

	out := WithExactLines(context.Background(), root, files, intent)
	require.NotEmpty(t, out[0].MatchedLines)
	assert.LessOrEqual(t, len(out[0].MatchedLines), 3)
}

func TestContextPointerRoundTrip(t *testing.T) {
	root := t.TempDir()
	ptr := &ContextPointer{Query: "auth", Keywords: []string{"auth", "login"}, Paths: []string{"src/auth.ts"}}
	require.NoError(t, SaveContextPointer(root, ptr))

	loaded, err := LoadContextPointer(root)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, ptr.Query, loaded.Query)
}

func TestContextPointerMissingReturnsNilNil(t *testing.T) {
	root := t.TempDir()
	loaded, err := LoadContextPointer(root)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
