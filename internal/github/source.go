package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// maxPerPage is the GitHub API page size limit.
const maxPerPage = 100

// RemoteSource lists commits of a public (or token-accessible) GitHub repository.
type RemoteSource struct {
	client *gh.Client
}

// NewRemoteSource builds a source. An empty token uses anonymous access and
// an empty apiURL uses https://api.github.com/.
func NewRemoteSource(token, apiURL string) (*RemoteSource, error) {
	client := gh.NewClient(&http.Client{Timeout: 30 * time.Second})
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("parse GitHub API URL: %w", err)
		}
		client.BaseURL = base
	}

	return &RemoteSource{client: client}, nil
}

func (s *RemoteSource) Fetch(ctx context.Context, req changelog.Request) ([]changelog.CommitRecord, error) {
	if err := changelog.ValidateCount(req.Count); err != nil {
		return nil, err
	}

	repo, err := ParseRepoURL(req.Source)
	if err != nil {
		return nil, err
	}
	branch := req.BranchOrDefault()

	if err := s.checkBranch(ctx, repo, branch); err != nil {
		return nil, err
	}

	listed, err := s.listCommits(ctx, repo, branch, req.Count)
	if err != nil {
		return nil, err
	}
	if len(listed) == 0 {
		return nil, changelog.Errorf(changelog.ErrNoCommitsFound,
			"no commits found in repository '%s' on branch '%s'", repo, branch)
	}

	commits := make([]changelog.CommitRecord, 0, len(listed))
	for _, c := range listed {
		detail, _, err := s.client.Repositories.GetCommit(ctx, repo.Owner, repo.Name, c.GetSHA(), nil)
		if err != nil {
			return nil, classify(err, changelog.ErrUpstreamService, "fetch commit %s of '%s'", c.GetSHA(), repo)
		}

		record := toRecord(detail)
		logger.GlobalLogger.PrintCommit(record.Hash, record.Date, record.Subject())
		commits = append(commits, record)
	}

	logger.GlobalLogger.Verbosef("Fetched %d of %d requested commits from %s@%s", len(commits), req.Count, repo, branch)
	return commits, nil
}

func (s *RemoteSource) checkBranch(ctx context.Context, repo Repo, branch string) error {
	logger.GlobalLogger.Debugf("Checking branch %s on %s", branch, repo)

	// GetBranch returns untyped errors for non-200 statuses; Do keeps the typed ones.
	u := fmt.Sprintf("repos/%v/%v/branches/%v", repo.Owner, repo.Name, url.PathEscape(branch))
	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build branch request: %w", err)
	}

	_, err = s.client.Do(ctx, req, nil)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return classify(err, changelog.ErrUpstreamService, "look up branch '%s' of '%s'", branch, repo)
	}

	// GitHub answers 404 for both a missing branch and a missing repository.
	if _, _, repoErr := s.client.Repositories.Get(ctx, repo.Owner, repo.Name); repoErr != nil {
		return classify(repoErr, changelog.ErrRepositoryNotFound, "repository '%s' not found", repo)
	}
	return changelog.Errorf(changelog.ErrBranchNotFound, "branch '%s' not found in repository '%s'", branch, repo)
}

func (s *RemoteSource) listCommits(ctx context.Context, repo Repo, branch string, n int) ([]*gh.RepositoryCommit, error) {
	opts := &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: min(n, maxPerPage)},
	}

	var commits []*gh.RepositoryCommit
	for {
		logger.GlobalLogger.Debugf("Listing commits of %s@%s (page %d)", repo, branch, max(opts.Page, 1))

		page, resp, err := s.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, classify(err, changelog.ErrBranchNotFound, "list commits of '%s' on branch '%s'", repo, branch)
		}
		commits = append(commits, page...)

		if len(commits) >= n || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if len(commits) > n {
		commits = commits[:n]
	}
	return commits, nil
}

func toRecord(c *gh.RepositoryCommit) changelog.CommitRecord {
	author := c.GetCommit().GetAuthor()

	record := changelog.CommitRecord{
		Hash:    c.GetSHA(),
		Author:  author.GetName(),
		Date:    author.GetDate().Time,
		Message: strings.TrimSpace(c.GetCommit().GetMessage()),
	}

	var diff strings.Builder
	for _, f := range c.Files {
		record.Files = append(record.Files, changelog.FileChange{
			Path:         f.GetFilename(),
			PreviousPath: f.GetPreviousFilename(),
			Status:       statusCode(f.GetStatus()),
			Additions:    f.GetAdditions(),
			Deletions:    f.GetDeletions(),
		})

		if f.GetPatch() == "" {
			continue
		}
		from := f.GetPreviousFilename()
		if from == "" {
			from = f.GetFilename()
		}
		fmt.Fprintf(&diff, "diff --git a/%s b/%s\n%s\n", from, f.GetFilename(), f.GetPatch())
	}
	record.Diff = diff.String()

	return record
}

func statusCode(status string) string {
	switch status {
	case "added":
		return "A"
	case "removed":
		return "D"
	case "renamed":
		return "R"
	case "modified", "changed":
		return "M"
	case "":
		return ""
	default:
		return strings.ToUpper(status[:1])
	}
}

func isNotFound(err error) bool {
	var respErr *gh.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}

// classify maps a go-github error onto the changelog taxonomy. notFound is
// the kind reported for a 404.
func classify(err error, notFound *changelog.Kind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	var respErr *gh.ErrorResponse

	switch {
	case errors.As(err, &rateErr):
		return changelog.Wrap(changelog.ErrRateLimited, err, "%s: GitHub rate limit exceeded until %s",
			msg, rateErr.Rate.Reset.Time.Format(time.RFC3339))
	case errors.As(err, &abuseErr):
		return changelog.Wrap(changelog.ErrRateLimited, err, "%s: GitHub secondary rate limit hit", msg)
	case errors.As(err, &respErr) && respErr.Response != nil:
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return changelog.Wrap(changelog.ErrAuthentication, err, "%s: GitHub rejected the token", msg)
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return changelog.Wrap(notFound, err, "%s", msg)
		case http.StatusTooManyRequests:
			return changelog.Wrap(changelog.ErrRateLimited, err, "%s", msg)
		}
	}
	return changelog.Wrap(changelog.ErrUpstreamService, err, "%s", msg)
}
