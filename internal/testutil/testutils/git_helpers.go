package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitRepo initializes a repository in a temp directory whose HEAD points
// at branch. The branch stays unborn until the first commit.
func InitRepo(t *testing.T, branch string) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}
	return repo, dir
}

// CommitFile writes name (relative to dir) and commits it.
func CommitFile(t *testing.T, repo *git.Repository, dir, name string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	p := filepath.Join(dir, filepath.FromSlash(name))
	if _, statErr := os.Stat(p); os.IsNotExist(statErr) {
		WriteFiles(t, dir, map[string]string{name: "content\n"})
	}
	if _, err := wt.Add(filepath.ToSlash(name)); err != nil {
		t.Fatalf("failed to stage %s: %v", name, err)
	}
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit %s: %v", name, err)
	}
	return hash
}

// AddRemote registers a remote with a single fetch URL.
func AddRemote(t *testing.T, repo *git.Repository, name, url string) {
	t.Helper()
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		t.Fatalf("failed to add remote %s: %v", name, err)
	}
}
