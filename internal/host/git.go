package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// ScanGitRepos walks root up to maxDepth directory levels and inspects
// every git repository it finds. Directories that cannot be opened are
// skipped rather than failing the whole scan. Results are sorted by
// path.
func ScanGitRepos(ctx context.Context, root string, maxDepth int) ([]GitRepo, error) {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	root = expandHome(root)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("host: scan root: %w", err)
	}

	repos := []GitRepo{}
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			if repo, ok := inspectRepo(dir); ok {
				repos = append(repos, repo)
			}
			// Nested repos under a repo root are rare; stop here.
			return nil
		}
		if depth >= maxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if err := walk(filepath.Join(dir, e.Name()), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Path < repos[j].Path })
	return repos, nil
}

// inspectRepo reads branch, dirty state, last commit subject, and the
// origin URL from one repository.
func inspectRepo(dir string) (GitRepo, bool) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return GitRepo{}, false
	}

	out := GitRepo{Path: dir, Name: filepath.Base(dir)}

	head, err := repo.Head()
	if err == nil {
		out.Branch = head.Name().Short()
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			out.LastCommit = firstLine(commit.Message)
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			out.HasUncommitted = !status.IsClean()
		}
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			out.RemoteURL = urls[0]
		}
	}
	return out, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
