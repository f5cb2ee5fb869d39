package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// makeRepo initializes a repository with one commit and an origin
// remote under dir.
func makeRepo(t *testing.T, dir string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/demo.git"},
	})
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
}

func TestScanGitRepos(t *testing.T) {
	root := t.TempDir()
	makeRepo(t, filepath.Join(root, "projects", "demo"))
	if err := os.MkdirAll(filepath.Join(root, "projects", "plain"), 0o755); err != nil {
		t.Fatal(err)
	}

	repos, err := ScanGitRepos(context.Background(), root, 3)
	if err != nil {
		t.Fatalf("ScanGitRepos: %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("expected 1 repo, got %d", len(repos))
	}
	r := repos[0]
	if r.Name != "demo" {
		t.Errorf("name = %q", r.Name)
	}
	if r.LastCommit != "initial commit" {
		t.Errorf("last commit = %q", r.LastCommit)
	}
	if r.RemoteURL != "https://example.com/demo.git" {
		t.Errorf("remote = %q", r.RemoteURL)
	}
	if r.HasUncommitted {
		t.Error("expected clean worktree")
	}
}

func TestScanGitReposDirtyWorktree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "demo")
	makeRepo(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	repos, err := ScanGitRepos(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("ScanGitRepos: %v", err)
	}
	if len(repos) != 1 || !repos[0].HasUncommitted {
		t.Fatalf("expected dirty repo, got %+v", repos)
	}
}

func TestScanGitReposDepthLimit(t *testing.T) {
	root := t.TempDir()
	makeRepo(t, filepath.Join(root, "a", "b", "c", "deep"))

	repos, err := ScanGitRepos(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("ScanGitRepos: %v", err)
	}
	if len(repos) != 0 {
		t.Fatalf("expected depth cutoff, got %+v", repos)
	}

	repos, err = ScanGitRepos(context.Background(), root, 4)
	if err != nil {
		t.Fatalf("ScanGitRepos: %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("expected 1 repo at depth 4, got %d", len(repos))
	}
}

func TestScanGitReposMissingRoot(t *testing.T) {
	if _, err := ScanGitRepos(context.Background(), filepath.Join(t.TempDir(), "nope"), 2); err == nil {
		t.Fatal("expected error")
	}
}
