package github

import (
	"net/url"
	"strings"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
)

const urlFormatHint = "please use the format 'https://github.com/owner/repo'"

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL accepts https://github.com/<owner>/<repo>, optionally followed
// by ".git" and/or trailing slashes.
func ParseRepoURL(raw string) (Repo, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	trimmed = strings.TrimRight(trimmed, "/")

	u, err := url.Parse(trimmed)
	if err != nil {
		return Repo{}, changelog.Wrap(changelog.ErrInvalidRepositoryURL, err, "invalid GitHub URL %q, %s", raw, urlFormatHint)
	}

	if u.Scheme != "https" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return Repo{}, changelog.Errorf(changelog.ErrInvalidRepositoryURL, "invalid GitHub URL %q, %s", raw, urlFormatHint)
	}

	host := strings.ToLower(u.Host)
	if host != "github.com" && host != "www.github.com" {
		return Repo{}, changelog.Errorf(changelog.ErrInvalidRepositoryURL, "invalid GitHub URL %q: host must be github.com", raw)
	}

	parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, changelog.Errorf(changelog.ErrInvalidRepositoryURL, "invalid GitHub URL %q, %s", raw, urlFormatHint)
	}

	return Repo{Owner: parts[0], Name: parts[1]}, nil
}
