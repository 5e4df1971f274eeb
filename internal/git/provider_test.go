package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.go"), []byte("package main\n"), 0o644))
	run("add", "tracked.go")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestNewProviderResolvesRoot(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	p, err := NewProvider(sub)
	require.NoError(t, err)
	require.Equal(t, dir, p.GetRepoRoot())
}

func TestNewProviderRejectsNonRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := NewProvider(dir)
	require.Error(t, err)
}

func TestIsGitRepoMemoizes(t *testing.T) {
	ResetRepoCheckCache()
	dir := initRepo(t)
	require.True(t, IsGitRepo(dir))

	nonRepo := t.TempDir()
	require.False(t, IsGitRepo(nonRepo))
	// second call hits the memoized cache, same result
	require.False(t, IsGitRepo(nonRepo))
}

func TestListTrackedAndUntrackedFiles(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package main\n"), 0o644))

	p, err := NewProvider(dir)
	require.NoError(t, err)

	tracked, err := p.ListTrackedFiles(context.Background())
	require.NoError(t, err)
	require.Contains(t, tracked, "tracked.go")
	require.NotContains(t, tracked, "new.go")

	untracked, err := p.ListUntrackedFiles(context.Background())
	require.NoError(t, err)
	require.Contains(t, untracked, "new.go")
}

func TestGetModifiedFiles(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	p, err := NewProvider(dir)
	require.NoError(t, err)

	modified, err := p.GetModifiedFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, modified, 1)
	require.Equal(t, "tracked.go", modified[0].Path)
	require.Equal(t, StatusModified, modified[0].Status)
}

func TestGetCurrentBranch(t *testing.T) {
	dir := initRepo(t)
	p, err := NewProvider(dir)
	require.NoError(t, err)

	branch, err := p.GetCurrentBranch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, branch)
}
