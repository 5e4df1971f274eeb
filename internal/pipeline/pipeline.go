// Package pipeline wires the nine-stage search pipeline end to end:
// enumerate, classify, analyse intent, score, rescore against the
// semantic index, extract excerpts, compute blast radius, and build the
// final result. Both the CLI and the MCP server drive a search through
// this single entry point so the two surfaces can never diverge (spec
// §6's "internal invocation reuses the same pipeline; it does not shell
// out").
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/standardbeagle/mantic/internal/classify"
	"github.com/standardbeagle/mantic/internal/config"
	"github.com/standardbeagle/mantic/internal/contextbuilder"
	"github.com/standardbeagle/mantic/internal/depgraph"
	"github.com/standardbeagle/mantic/internal/enumerate"
	"github.com/standardbeagle/mantic/internal/git"
	"github.com/standardbeagle/mantic/internal/intent"
	"github.com/standardbeagle/mantic/internal/score"
	"github.com/standardbeagle/mantic/internal/semindex"
	"github.com/standardbeagle/mantic/internal/session"
	"github.com/standardbeagle/mantic/internal/smartfilter"
	"github.com/standardbeagle/mantic/internal/types"
)

const exactLineTopN = 10

// Filter is the CLI/MCP file-type filter (--code|--config|--test).
type Filter string

const (
	FilterNone   Filter = ""
	FilterCode   Filter = "code"
	FilterConfig Filter = "config"
	FilterTest   Filter = "test"
)

// Options configures a single end-to-end search.
type Options struct {
	Root             string
	Query            string
	Filter           Filter
	IncludeGenerated bool
	MaxFiles         int           // result cap when > 0 (the CLI passes MANTIC_MAX_FILES), else config.Scoring.TopN
	Timeout          time.Duration // scan timeout when > 0 (the CLI passes MANTIC_TIMEOUT), else enumerate.DefaultScanTimeout
	IgnorePatterns   []string
	IncludeImpact    bool
	SessionID        string // non-empty enables §4.8 recording
	Sessions         *session.Manager
}

// Run executes the full pipeline and returns the assembled result.
func Run(ctx context.Context, opts Options) (contextbuilder.Result, error) {
	start := time.Now()

	cfg, err := config.LoadWithRoot(filepath.Join(opts.Root, ".mantic.kdl"), opts.Root)
	if err != nil {
		cfg = config.Default(opts.Root)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = enumerate.DefaultScanTimeout
	}

	enumResult := enumerate.Enumerate(ctx, enumerate.Options{
		Root:             opts.Root,
		ScanTimeout:      timeout,
		WalkerMaxDepth:   cfg.Enumerate.WalkerMaxDepth,
		IgnorePatterns:   opts.IgnorePatterns,
		IncludeGenerated: opts.IncludeGenerated,
	})

	candidatePaths := applyFilter(enumResult.Files, opts.Filter)
	candidates := make([]types.FileCandidate, 0, len(candidatePaths))
	for _, p := range candidatePaths {
		candidates = append(candidates, types.FileCandidate{Path: p, Class: classify.Classify(p)})
	}

	intentAnalysis := intent.Analyze(opts.Query)

	var sessionBoosts map[string]types.BoostCandidate
	var priorPtr *smartfilter.ContextPointer
	if opts.Sessions != nil && opts.SessionID != "" {
		if _, err := opts.Sessions.Load(opts.SessionID); err == nil {
			boosts := opts.Sessions.GetBoostCandidates()
			if len(boosts) > 0 {
				sessionBoosts = make(map[string]types.BoostCandidate, len(boosts))
				for _, b := range boosts {
					sessionBoosts[b.Path] = b
				}
			}
		}
	}
	if ptr, err := smartfilter.LoadContextPointer(opts.Root); err == nil {
		priorPtr = ptr
	}

	recentlyChanged := recentlyChangedSet(ctx, opts.Root)

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = cfg.Scoring.TopN
	}
	scoreOpts := score.Options{
		Config:          cfg.Scoring,
		SessionBoosts:   sessionBoosts,
		RecentlyChanged: recentlyChanged,
		TopN:            maxFiles,
	}
	scored := score.Score(candidates, intentAnalysis, scoreOpts)

	store := semindex.NewStore()
	idx, _ := store.Load(opts.Root)
	if idx == nil {
		idx = semindex.NewEmpty(opts.Root)
	}
	delta := semindex.Classify(opts.Root, idx, candidatePaths)
	semindex.Refresh(ctx, opts.Root, idx, delta)
	_ = store.Save(idx)

	if smartfilter.Applicable(idx, intentAnalysis) {
		scored = smartfilter.Rescore(scored, idx, intentAnalysis, smartfilter.Options{
			RecentlyChanged: recentlyChanged,
			Prior:           priorPtr,
		})
	}

	excerptTarget := scored
	if len(excerptTarget) > exactLineTopN {
		excerptTarget = excerptTarget[:exactLineTopN]
	}
	withLines := smartfilter.WithExactLines(ctx, opts.Root, excerptTarget, intentAnalysis)
	copy(scored, withLines)

	if opts.IncludeImpact && len(scored) > 0 {
		attachImpact(opts.Root, scored, candidatePaths)
	}

	_ = smartfilter.SaveContextPointer(opts.Root, &smartfilter.ContextPointer{
		Query:    opts.Query,
		Keywords: intentAnalysis.Keywords,
		Paths:    topPaths(scored, exactLineTopN),
	})

	if opts.Sessions != nil && opts.SessionID != "" {
		_ = opts.Sessions.RecordQuery(opts.Query, topPaths(scored, exactLineTopN))
		views := make(map[string]types.ScoredFile, len(scored))
		for _, sf := range scored {
			views[sf.Path] = sf
		}
		_ = opts.Sessions.RecordFileViews(views)
	}

	gitState, hasChanges := detectGitState(ctx, opts.Root)

	result := contextbuilder.Build(contextbuilder.Options{
		Root:           opts.Root,
		Query:          opts.Query,
		Intent:         intentAnalysis,
		Files:          scored,
		CandidatePaths: candidatePaths,
		Index:          idx,
		TotalScanned:   len(enumResult.Files),
		TechStack:      idx.TechStack,
		ProjectType:    detectProjectType(opts.Root),
		GitState:       gitState,
		HasGitChanges:  hasChanges,
		Elapsed:        time.Since(start),
	})

	return result, nil
}

func applyFilter(files []string, filter Filter) []string {
	if filter == FilterNone {
		return files
	}
	want := types.ClassTag(filter)
	out := make([]string, 0, len(files))
	for _, f := range files {
		if classify.Classify(f) == want {
			out = append(out, f)
		}
	}
	return out
}

func topPaths(scored []types.ScoredFile, n int) []string {
	if len(scored) > n {
		scored = scored[:n]
	}
	out := make([]string, 0, len(scored))
	for _, sf := range scored {
		out = append(out, sf.Path)
	}
	return out
}

func attachImpact(root string, scored []types.ScoredFile, allFiles []string) {
	graph := depgraph.BuildGraph(root, allFiles)
	for i := range scored {
		impact := depgraph.Impact(graph, scored[i].Path, allFiles)
		scored[i].Impact = &impact
	}
}

func recentlyChangedSet(ctx context.Context, root string) map[string]bool {
	if !git.IsGitRepo(root) {
		return nil
	}
	provider, err := git.NewProvider(root)
	if err != nil {
		return nil
	}
	modified, err := provider.GetModifiedFiles(ctx)
	if err != nil {
		return nil
	}
	out := make(map[string]bool, len(modified))
	for _, m := range modified {
		out[m.Path] = true
	}
	return out
}

func detectGitState(ctx context.Context, root string) (string, bool) {
	if !git.IsGitRepo(root) {
		return "", false
	}
	provider, err := git.NewProvider(root)
	if err != nil {
		return "", false
	}
	branch, err := provider.GetCurrentBranch(ctx)
	if err != nil {
		return "", false
	}
	modified, err := provider.GetModifiedFiles(ctx)
	if err != nil {
		return branch, false
	}
	return branch, len(modified) > 0
}

// projectMarkers is a coarse project-type probe: the first manifest file
// found on disk names the stack (spec's ambient tech-stack detection,
// grounded on the teacher's marker-based project-root detector).
var projectMarkers = []struct {
	file string
	kind string
}{
	{"go.mod", "go"},
	{"package.json", "node"},
	{"Cargo.toml", "rust"},
	{"pyproject.toml", "python"},
	{"requirements.txt", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
}

func detectProjectType(root string) string {
	for _, m := range projectMarkers {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			return m.kind
		}
	}
	return ""
}
