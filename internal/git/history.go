package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// RecentCommits returns up to limit commits reachable from HEAD, newest first.
func (r *Repository) RecentCommits(ctx context.Context, limit int) ([]changelog.CommitRecord, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, changelog.Errorf(changelog.ErrNoCommitsFound, "no commits found in repository at '%s'", r.path)
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	logger.GlobalLogger.Debugf("Walking history from %s (%s)", head.Name().Short(), head.Hash())

	commitIter, err := r.repo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer commitIter.Close()

	var commits []changelog.CommitRecord
	err = commitIter.ForEach(func(c *object.Commit) error {
		if len(commits) >= limit {
			return storer.ErrStop
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := toRecord(ctx, c)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		commits = append(commits, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

func toRecord(ctx context.Context, c *object.Commit) (changelog.CommitRecord, error) {
	patch, err := firstParentPatch(ctx, c)
	if err != nil {
		return changelog.CommitRecord{}, err
	}

	return changelog.CommitRecord{
		Hash:    c.Hash.String(),
		Author:  c.Author.Name,
		Date:    c.Author.When,
		Message: strings.TrimSpace(c.Message),
		Files:   fileChanges(patch),
		Diff:    patch.String(),
	}, nil
}

// firstParentPatch diffs c against its first parent, or against an empty tree
// for a root commit.
func firstParentPatch(ctx context.Context, c *object.Commit) (*object.Patch, error) {
	toTree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	fromTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("read parent: %w", err)
		}
		fromTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("read parent tree: %w", err)
		}
	}

	return fromTree.PatchContext(ctx, toTree)
}

func fileChanges(patch *object.Patch) []changelog.FileChange {
	var changes []changelog.FileChange
	for _, filePatch := range patch.FilePatches() {
		from, to := filePatch.Files()

		change := changelog.FileChange{}
		switch {
		case from == nil && to != nil:
			change.Path = to.Path()
			change.Status = "A"
		case to == nil && from != nil:
			change.Path = from.Path()
			change.Status = "D"
		case from != nil && to != nil && from.Path() != to.Path():
			change.Path = to.Path()
			change.PreviousPath = from.Path()
			change.Status = "R"
		case to != nil:
			change.Path = to.Path()
			change.Status = "M"
		default:
			continue
		}

		for _, chunk := range filePatch.Chunks() {
			switch chunk.Type() {
			case diff.Add:
				change.Additions += countLines(chunk.Content())
			case diff.Delete:
				change.Deletions += countLines(chunk.Content())
			}
		}

		changes = append(changes, change)
	}
	return changes
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
