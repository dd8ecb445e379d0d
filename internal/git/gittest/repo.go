// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit describes one commit to create. Files maps a path to its new content.
type Commit struct {
	Message string
	Author  string
	When    time.Time
	Files   map[string]string
}

// NewRepo initializes a repository in a temp dir and creates commits in order,
// oldest first. It returns the repository path.
func NewRepo(t *testing.T, commits ...Commit) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	for _, c := range commits {
		for path, content := range c.Files {
			full := filepath.Join(dir, path)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", path, err)
			}
			if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
				t.Fatalf("write %s: %v", path, err)
			}
			if _, err := wt.Add(path); err != nil {
				t.Fatalf("add %s: %v", path, err)
			}
		}

		author := c.Author
		if author == "" {
			author = "Test Author"
		}
		sig := &object.Signature{Name: author, Email: "test@example.com", When: c.When}
		if _, err := wt.Commit(c.Message, &git.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true}); err != nil {
			t.Fatalf("commit %q: %v", c.Message, err)
		}
	}

	return dir
}

// Date returns noon UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
