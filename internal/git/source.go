package git

import (
	"context"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// LocalSource reads commits from a repository on the local filesystem.
type LocalSource struct {
	// SearchDepth is how many directories, starting with the given path, are
	// checked for .git. Zero checks only the path itself.
	SearchDepth int
}

func (s LocalSource) Fetch(ctx context.Context, req changelog.Request) ([]changelog.CommitRecord, error) {
	if err := changelog.ValidateCount(req.Count); err != nil {
		return nil, err
	}

	depth := s.SearchDepth
	if depth <= 0 {
		depth = 1
	}

	repo, err := OpenRepository(req.Source, depth)
	if err != nil {
		return nil, err
	}

	if logger.GlobalLogger.Verbose() {
		if dirty, err := repo.IsDirty(); err != nil {
			logger.GlobalLogger.Debugf("Skipping status check: %v", err)
		} else if dirty {
			logger.GlobalLogger.Warnf("Uncommitted changes in %s are not part of the changelog", repo.Path())
		}
	}

	commits, err := repo.RecentCommits(ctx, req.Count)
	if err != nil {
		return nil, err
	}

	logger.GlobalLogger.Verbosef("Read %d of %d requested commits", len(commits), req.Count)
	for _, c := range commits {
		logger.GlobalLogger.PrintCommit(c.Hash, c.Date, c.Subject())
	}
	return commits, nil
}
