package changelog

import (
	"context"
	"strings"
	"time"
)

const DefaultBranch = "main"

// FileChange describes one path touched by a commit.
type FileChange struct {
	Path         string
	PreviousPath string
	Status       string // A, M, D or R
	Additions    int
	Deletions    int
}

// CommitRecord is a single commit as returned by a Source. Records are never
// modified after they are fetched.
type CommitRecord struct {
	Hash    string
	Author  string
	Date    time.Time
	Message string
	Files   []FileChange
	Diff    string
}

// Paths returns the changed file paths in the order the source reported them.
func (c CommitRecord) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Subject returns the first line of the commit message.
func (c CommitRecord) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// Request is built once from CLI input.
type Request struct {
	Source string
	Local  bool
	Count  int
	Branch string
}

// BranchOrDefault returns the requested branch, falling back to main.
func (r Request) BranchOrDefault() string {
	if r.Branch == "" {
		return DefaultBranch
	}
	return r.Branch
}

// Source fetches up to Request.Count commits, newest first.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]CommitRecord, error)
}

// Summarizer turns a prompt into the model's raw text response.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// ValidateCount rejects non-positive commit counts. Sources call it before
// touching the filesystem or network.
func ValidateCount(n int) error {
	if n <= 0 {
		return Errorf(ErrInvalidCommitCount, "number of commits must be a positive integer, got %d", n)
	}
	return nil
}
