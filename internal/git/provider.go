// Package git provides a thin wrapper over the git CLI for version-controlled
// enumeration and the recency boost: listing tracked files, untracked-but-not-
// ignored files, and the set of working-tree modified paths.
package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Provider wraps git commands scoped to a single repository root.
type Provider struct {
	repoRoot string
}

// repoCheckCache memoizes IsGitRepo results per directory for the life of
// the process. Callers may call ResetRepoCheckCache between test cases.
var (
	repoCheckCache   = make(map[string]bool)
	repoCheckCacheMu sync.Mutex
)

// ResetRepoCheckCache clears the per-process repo-check memoisation map.
func ResetRepoCheckCache() {
	repoCheckCacheMu.Lock()
	defer repoCheckCacheMu.Unlock()
	repoCheckCache = make(map[string]bool)
}

// NewProvider resolves dir to its enclosing git repository root via
// git rev-parse --show-toplevel. It returns an error if dir is not inside
// a git working tree.
func NewProvider(dir string) (*Provider, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve repo dir: %w", err)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absDir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", absDir)
	}

	return &Provider{repoRoot: strings.TrimSpace(string(output))}, nil
}

// IsGitRepo reports whether dir is inside a git working tree, memoized
// per-process for the life of the program.
func IsGitRepo(dir string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}

	repoCheckCacheMu.Lock()
	if cached, ok := repoCheckCache[absDir]; ok {
		repoCheckCacheMu.Unlock()
		return cached
	}
	repoCheckCacheMu.Unlock()

	_, err = NewProvider(absDir)
	result := err == nil

	repoCheckCacheMu.Lock()
	repoCheckCache[absDir] = result
	repoCheckCacheMu.Unlock()

	return result
}

// GetRepoRoot returns the resolved repository root.
func (p *Provider) GetRepoRoot() string {
	return p.repoRoot
}

// ListTrackedFiles returns all tracked files, repository-root-relative.
func (p *Provider) ListTrackedFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files")
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	return splitLines(output), nil
}

// ListUntrackedFiles returns untracked-but-not-ignored files. Callers skip
// this query for very large repositories, per the enumeration budget.
func (p *Provider) ListUntrackedFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--others", "--exclude-standard")
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files --others: %w", err)
	}
	return splitLines(output), nil
}

// GetModifiedFiles returns the union of staged and unstaged changes
// relative to HEAD, for the recency boost. On a repository with no
// commits yet, it falls back to the staged diff against the empty tree.
func (p *Provider) GetModifiedFiles(ctx context.Context) ([]ModifiedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "HEAD", "--name-status", "--no-renames")
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		cmd = exec.CommandContext(ctx, "git", "diff", "--cached", "--name-status", "--no-renames")
		cmd.Dir = p.repoRoot
		output, err = cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("git diff --name-status: %w", err)
		}
	}
	return parseNameStatus(output), nil
}

func parseNameStatus(output []byte) []ModifiedFile {
	var files []ModifiedFile
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		path := parts[len(parts)-1]
		files = append(files, ModifiedFile{Path: path, Status: statusFromLetter(parts[0])})
	}
	return files
}

func statusFromLetter(status string) ChangeStatus {
	if status == "" {
		return StatusModified
	}
	switch status[0] {
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	default:
		return StatusModified
	}
}

func splitLines(output []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// GetCurrentBranch returns the current branch name.
func (p *Provider) GetCurrentBranch(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse --abbrev-ref HEAD: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
