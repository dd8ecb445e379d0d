package git

import (
	"errors"

	"github.com/go-git/go-git/v5"
)

// MaxRootSearchDepth is a LocalSource.SearchDepth that finds the root from any
// reasonably nested directory.
const MaxRootSearchDepth = 32

var ErrNotAGitRepository = errors.New("not a git repository")

type Repository struct {
	path string
	repo *git.Repository
}
