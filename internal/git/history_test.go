package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/git/gittest"
)

func threeCommitRepo(t *testing.T) string {
	t.Helper()
	return gittest.NewRepo(t,
		gittest.Commit{
			Message: "fix crash",
			When:    gittest.Date(2025, 3, 1),
			Files:   map[string]string{"app.go": "package app\n"},
		},
		gittest.Commit{
			Message: "add search",
			When:    gittest.Date(2025, 3, 2),
			Files:   map[string]string{"search.go": "package app\n\nfunc Search() {}\n"},
		},
		gittest.Commit{
			Message: "typo fix",
			When:    gittest.Date(2025, 3, 5),
			Files:   map[string]string{"app.go": "package app\n\n// App entry.\n"},
		},
	)
}

func TestLocalSourceReturnsNewestFirst(t *testing.T) {
	dir := threeCommitRepo(t)

	commits, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}

	want := []string{"typo fix", "add search", "fix crash"}
	seen := make(map[string]bool)
	for i, c := range commits {
		if c.Message != want[i] {
			t.Fatalf("commit %d: expected message %q, got %q", i, want[i], c.Message)
		}
		if seen[c.Hash] {
			t.Fatalf("duplicate hash %s", c.Hash)
		}
		seen[c.Hash] = true
		if i > 0 && !c.Date.Before(commits[i-1].Date) {
			t.Fatalf("commits not strictly newest first: %v then %v", commits[i-1].Date, c.Date)
		}
	}
	if commits[0].Author != "Test Author" {
		t.Fatalf("unexpected author %q", commits[0].Author)
	}
}

func TestLocalSourceLimitsToN(t *testing.T) {
	dir := threeCommitRepo(t)

	commits, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Message != "typo fix" || commits[1].Message != "add search" {
		t.Fatalf("unexpected commits: %q, %q", commits[0].Message, commits[1].Message)
	}
}

func TestLocalSourceReturnsAllWhenFewerThanN(t *testing.T) {
	dir := threeCommitRepo(t)

	commits, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected all 3 commits, got %d", len(commits))
	}
}

func TestLocalSourceFileChangesAndDiff(t *testing.T) {
	dir := threeCommitRepo(t)

	commits, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := commits[2]
	if len(root.Files) != 1 || root.Files[0].Path != "app.go" || root.Files[0].Status != "A" {
		t.Fatalf("unexpected root commit files: %+v", root.Files)
	}
	if root.Files[0].Additions != 1 {
		t.Fatalf("expected 1 added line, got %d", root.Files[0].Additions)
	}

	latest := commits[0]
	if len(latest.Files) != 1 || latest.Files[0].Status != "M" {
		t.Fatalf("unexpected latest commit files: %+v", latest.Files)
	}
	if latest.Diff == "" {
		t.Fatalf("expected diff text for latest commit")
	}
}

func TestLocalSourceSearchDepthFindsRoot(t *testing.T) {
	dir := gittest.NewRepo(t, gittest.Commit{
		Message: "initial",
		When:    gittest.Date(2025, 1, 1),
		Files:   map[string]string{"pkg/a.go": "package pkg\n"},
	})

	source := LocalSource{SearchDepth: MaxRootSearchDepth}
	commits, err := source.Fetch(context.Background(), changelog.Request{Source: filepath.Join(dir, "pkg"), Local: true, Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(commits))
	}
}

func TestLocalSourceRejectsPlainSubdirectory(t *testing.T) {
	dir := gittest.NewRepo(t, gittest.Commit{
		Message: "outer commit",
		When:    gittest.Date(2025, 1, 1),
		Files:   map[string]string{"README.md": "outer\n"},
	})
	plain := filepath.Join(dir, "not-a-repo")
	if err := os.Mkdir(plain, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	commits, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: plain, Local: true, Count: 1})
	if !errors.Is(err, changelog.ErrRepositoryNotFound) {
		t.Fatalf("expected RepositoryNotFoundError, got err=%v commits=%d", err, len(commits))
	}
}

func TestLocalSourceRejectsNonPositiveCountBeforeIO(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	for _, n := range []int{0, -1} {
		_, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: missing, Local: true, Count: n})
		if !errors.Is(err, changelog.ErrInvalidCommitCount) {
			t.Fatalf("n=%d: expected InvalidCommitCountError, got %v", n, err)
		}
	}
}

func TestLocalSourceRepositoryNotFound(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope")
		_, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: missing, Local: true, Count: 1})
		if !errors.Is(err, changelog.ErrRepositoryNotFound) {
			t.Fatalf("expected RepositoryNotFoundError, got %v", err)
		}
	})

	t.Run("plain directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "README"), []byte("hi"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		_, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 1})
		if !errors.Is(err, changelog.ErrRepositoryNotFound) {
			t.Fatalf("expected RepositoryNotFoundError, got %v", err)
		}
	})
}

func TestLocalSourceEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}

	_, err := LocalSource{}.Fetch(context.Background(), changelog.Request{Source: dir, Local: true, Count: 1})
	if !errors.Is(err, changelog.ErrNoCommitsFound) {
		t.Fatalf("expected NoCommitsFoundError, got %v", err)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"one\n", 1},
		{"one\ntwo\n", 2},
		{"one\ntwo", 2},
	}

	for _, tc := range tests {
		if got := countLines(tc.input); got != tc.want {
			t.Fatalf("countLines(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
