// Package enumerate produces the candidate file list for a working
// directory: version-controlled enumeration first, a native find binary
// second, and a bounded glob walker as the last-resort fallback (spec
// §4.1). Every strategy emits repository-relative, forward-slash paths
// after ignore filtering.
package enumerate

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/mantic/internal/errors"
	"github.com/standardbeagle/mantic/internal/git"
)

// Strategy names the enumeration strategy that produced a Result, for
// diagnostics and tests.
type Strategy string

const (
	StrategyGit     Strategy = "git"
	StrategyFind    Strategy = "find"
	StrategyWalker  Strategy = "walker"
	StrategyNone    Strategy = "none"
)

// DefaultScanTimeout is the overall enumeration deadline (spec §4.1, §5).
const DefaultScanTimeout = 30 * time.Second

// UntrackedQuerySkipThreshold is the tracked-file count above which the
// untracked-but-not-ignored git query is skipped (it dominates latency on
// very large repos).
const UntrackedQuerySkipThreshold = 50000

// DefaultWalkerMaxDepth bounds the glob-walker fallback.
const DefaultWalkerMaxDepth = 10

// Options controls an enumeration run.
type Options struct {
	Root             string
	ScanTimeout      time.Duration
	WalkerMaxDepth   int
	IgnorePatterns   []string // user-supplied glob overrides, e.g. MANTIC_IGNORE_PATTERNS
	IncludeGenerated bool
}

// Result is the output of an enumeration run.
type Result struct {
	Files       []string // repository-relative, forward-slash, sorted
	Strategy    Strategy
	Diagnostics []string
	TimedOut    bool
}

var builtinIgnorePrefixes = []string{
	"node_modules/", ".git/", "dist/", "build/", "target/", "vendor/",
	"__pycache__/", ".next/", ".nuxt/", "coverage/", "bower_components/",
	"jspm_packages/", "out/", "bin/", "obj/",
	// OS-sensitive directories; matched case-insensitively via lowercasing.
	"windows/", "$recycle.bin/", "appdata/", "system volume information/",
}

var builtinIgnoreGlobs = []string{
	"**/*.min.js", "**/*.min.css", "**/*.bundle.js", "**/*.map",
	"**/*.pyc", "**/*.log", "**/*.lock",
}

// Enumerate runs the strategy cascade and returns the ignore-filtered,
// repository-relative candidate list. A context deadline (or
// opts.ScanTimeout) that elapses mid-scan yields an empty result, never a
// partial one.
func Enumerate(ctx context.Context, opts Options) Result {
	timeout := opts.ScanTimeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan Result, 1)
	go func() {
		resultCh <- runCascade(scanCtx, opts)
	}()

	select {
	case res := <-resultCh:
		return res
	case <-scanCtx.Done():
		return Result{Strategy: StrategyNone, TimedOut: true, Diagnostics: []string{"scan timeout exceeded"}}
	}
}

func runCascade(ctx context.Context, opts Options) Result {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	var diagnostics []string

	if files, strat, ok := tryGit(ctx, absRoot, &diagnostics); ok {
		return finish(files, strat, diagnostics, opts)
	}

	if files, strat, ok := tryFind(ctx, absRoot, &diagnostics); ok {
		return finish(files, strat, diagnostics, opts)
	}

	files, strat := walk(ctx, absRoot, opts, &diagnostics)
	return finish(files, strat, diagnostics, opts)
}

func finish(files []string, strat Strategy, diagnostics []string, opts Options) Result {
	filtered := filterIgnored(files, opts)
	sort.Strings(filtered)
	return Result{Files: filtered, Strategy: strat, Diagnostics: diagnostics}
}

// tryGit implements spec §4.1 step 1: tracked files plus untracked-not-
// ignored files, skipping the latter query above UntrackedQuerySkipThreshold.
func tryGit(ctx context.Context, root string, diagnostics *[]string) ([]string, Strategy, bool) {
	if !git.IsGitRepo(root) {
		return nil, "", false
	}

	provider, err := git.NewProvider(root)
	if err != nil {
		*diagnostics = append(*diagnostics, errors.NewComponentError("enumerate", "git-provider", err).Error())
		return nil, "", false
	}

	tracked, err := provider.ListTrackedFiles(ctx)
	if err != nil {
		*diagnostics = append(*diagnostics, errors.NewComponentError("enumerate", "git-ls-files", err).Error())
		return nil, "", false
	}

	files := tracked
	if len(tracked) <= UntrackedQuerySkipThreshold {
		untracked, err := provider.ListUntrackedFiles(ctx)
		if err == nil {
			files = append(files, untracked...)
		} else {
			*diagnostics = append(*diagnostics, errors.NewComponentError("enumerate", "git-ls-files-others", err).Error())
		}
	}

	return toForwardSlash(files), StrategyGit, true
}

// capabilityProbe reports whether binary is reachable on PATH, using the
// OS-specific lookup (where.exe on Windows, command -v elsewhere). The
// contract ("is X available?") is stable across platforms even though
// the implementation differs.
func capabilityProbe(binary string) bool {
	if runtime.GOOS == "windows" {
		cmd := exec.Command("where.exe", binary)
		return cmd.Run() == nil
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// tryFind implements spec §4.1 step 2: a native find-binary invocation
// with null-delimited output and symlink-following disabled.
func tryFind(ctx context.Context, root string, diagnostics *[]string) ([]string, Strategy, bool) {
	binary := "fd"
	args := []string{"--type", "f", "--print0", "--no-follow", "."}
	if !capabilityProbe(binary) {
		binary = "find"
		args = []string{root, "-type", "f", "-print0"}
		if !capabilityProbe(binary) {
			return nil, "", false
		}
	} else {
		args = append(args, root)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		*diagnostics = append(*diagnostics, errors.NewComponentError("enumerate", "find-binary", err).Error())
		return nil, "", false
	}

	var files []string
	for _, p := range bytes.Split(out.Bytes(), []byte{0}) {
		if len(p) == 0 {
			continue
		}
		rel, err := filepath.Rel(root, string(p))
		if err != nil {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}
	return files, StrategyFind, true
}

// walk implements spec §4.1 step 3: a depth-bounded filepath.WalkDir that
// skips symlinks and directories, emitting files only. Permission-denied
// errors are swallowed with a recorded diagnostic; they never abort the
// walk.
func walk(ctx context.Context, root string, opts Options, diagnostics *[]string) ([]string, Strategy) {
	maxDepth := opts.WalkerMaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultWalkerMaxDepth
	}

	var files []string
	var mu sync.Mutex
	var permissionDenied int

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if os.IsPermission(err) {
				permissionDenied++
				return nil
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}

		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if d.IsDir() {
			if depth > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if depth > maxDepth {
			return nil
		}

		mu.Lock()
		files = append(files, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})

	if permissionDenied > 0 {
		*diagnostics = append(*diagnostics, "permission denied reading some directories; results may be incomplete")
	}

	return files, StrategyWalker
}

// filterIgnored drops paths matching the curated prefix set, the compiled
// glob set, or user-supplied MANTIC_IGNORE_PATTERNS overrides.
func filterIgnored(files []string, opts Options) []string {
	extra := opts.IgnorePatterns
	out := make([]string, 0, len(files))

	for _, f := range files {
		if shouldIgnore(f, extra) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func shouldIgnore(relPath string, extra []string) bool {
	lower := strings.ToLower(relPath)
	for _, prefix := range builtinIgnorePrefixes {
		if strings.HasPrefix(lower, prefix) || strings.Contains(lower, "/"+prefix) {
			return true
		}
	}

	for _, pattern := range builtinIgnoreGlobs {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}

	for _, pattern := range extra {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		if strings.Contains(relPath, pattern) {
			return true
		}
	}

	return false
}

func toForwardSlash(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}

// ParseIgnoreEnv splits a comma-separated MANTIC_IGNORE_PATTERNS value into
// a glob pattern slice, trimming whitespace and dropping empty entries.
func ParseIgnoreEnv(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
