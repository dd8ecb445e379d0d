package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// Open Git repository at the given path
func OpenRepository(path string, depth int) (*Repository, error) {
	absPath, err := ExpandPath(path)
	if err != nil {
		return nil, changelog.Wrap(changelog.ErrRepositoryNotFound, err, "invalid repository path %q", path)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, changelog.Errorf(changelog.ErrRepositoryNotFound, "local repo path '%s' does not exist", path)
	}

	repoPath, err := findRepositoryRoot(absPath, depth)
	if err != nil {
		return nil, changelog.Wrap(changelog.ErrRepositoryNotFound, err, "'%s' is not a valid git repository", path)
	}

	logger.GlobalLogger.Verbosef("Opening Git repository at: %s", repoPath)

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			err = ErrNotAGitRepository
		}
		return nil, changelog.Wrap(changelog.ErrRepositoryNotFound, err, "'%s' is not a valid git repository", path)
	}

	return &Repository{
		path: repoPath,
		repo: repo,
	}, nil
}

func findRepositoryRoot(startPath string, depth int) (string, error) {
	current := startPath
	if fi, err := os.Stat(current); err == nil && !fi.IsDir() {
		current = filepath.Dir(current)
	}

	logger.GlobalLogger.Debugf("Searching for Git repository root with maximum depth of %d", depth)

	for i := 0; i < depth; i++ {
		gitPath := filepath.Join(current, ".git")

		logger.GlobalLogger.Debugf("Checking for Git repository at: %s", gitPath)

		if fi, err := os.Stat(gitPath); err == nil {
			if fi.IsDir() {
				return current, nil
			}

			// Worktrees and submodules use a .git file pointing at the real gitdir
			if content, err := os.ReadFile(gitPath); err == nil {
				if strings.HasPrefix(string(content), "gitdir: ") {
					return current, nil
				}
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", ErrNotAGitRepository
}

func (r *Repository) Path() string {
	return r.path
}

// IsDirty reports whether the working tree has tracked changes that are not
// committed yet. Untracked files are ignored.
func (r *Repository) IsDirty() (bool, error) {
	logger.GlobalLogger.Debugf("Checking repository status at: %s", r.path)

	w, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get git status: %w", err)
	}

	for path, fileStatus := range status {
		if fileStatus.Worktree == git.Untracked && fileStatus.Staging == git.Untracked {
			continue
		}
		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			logger.GlobalLogger.Debugf("Uncommitted change: %s (Worktree: %c, Staging: %c)",
				path, fileStatus.Worktree, fileStatus.Staging)
			return true, nil
		}
	}

	return false, nil
}
