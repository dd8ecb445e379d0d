package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/cli"
	"github.com/trdani/ai-powered-changelog/internal/config"
	"github.com/trdani/ai-powered-changelog/internal/git/gittest"
)

const fixedChangelog = "## 2025-03-05\n\n- Fixed a spelling mistake.\n"

type recordingSummarizer struct {
	reply   string
	err     error
	prompts []string
}

func (r *recordingSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.reply, r.err
}

func testDeps(cfg config.Config, s *recordingSummarizer) Deps {
	return Deps{
		LoadConfig: func() (config.Config, error) { return cfg, nil },
		NewSummarizer: func(config.Config) (changelog.Summarizer, error) {
			return s, nil
		},
	}
}

func baseConfig() config.Config {
	return config.Config{
		Provider:   "claude",
		DiffLimit:  4000,
		RetryDelay: time.Millisecond,
	}
}

func execute(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewGenerateCmd(deps)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func threeCommitRepo(t *testing.T) string {
	t.Helper()
	return gittest.NewRepo(t,
		gittest.Commit{Message: "fix crash", When: gittest.Date(2025, 3, 1), Files: map[string]string{"app.go": "package app\n"}},
		gittest.Commit{Message: "add search", When: gittest.Date(2025, 3, 2), Files: map[string]string{"search.go": "package app\n"}},
		gittest.Commit{Message: "typo fix", When: gittest.Date(2025, 3, 5), Files: map[string]string{"app.go": "package app\n\n// App.\n"}},
	)
}

func TestLocalRepositoryEndToEnd(t *testing.T) {
	dir := threeCommitRepo(t)
	sum := &recordingSummarizer{reply: fixedChangelog}

	stdout, err := execute(t, testDeps(baseConfig(), sum),
		"--local", "1", "--gitrepo", dir, "--num_commits", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != fixedChangelog {
		t.Fatalf("expected model output verbatim on stdout, got %q", stdout)
	}
	if len(sum.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(sum.prompts))
	}
	for _, day := range []string{"2025-03-01", "2025-03-02", "2025-03-05"} {
		if !strings.Contains(sum.prompts[0], day) {
			t.Fatalf("prompt missing commit date %s", day)
		}
	}
}

func TestOutputFlagWritesFile(t *testing.T) {
	dir := threeCommitRepo(t)
	out := filepath.Join(t.TempDir(), "CHANGELOG.md")

	stdout, err := execute(t, testDeps(baseConfig(), &recordingSummarizer{reply: fixedChangelog}),
		"--local", "1", "--gitrepo", dir, "--num_commits", "2", "-o", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != fixedChangelog {
		t.Fatalf("unexpected file content %q", got)
	}
}

func TestOutputFlagLeavesNoFileOnFailure(t *testing.T) {
	dir := threeCommitRepo(t)
	out := filepath.Join(t.TempDir(), "CHANGELOG.md")
	sum := &recordingSummarizer{err: changelog.Errorf(changelog.ErrAuthentication, "bad key")}

	_, err := execute(t, testDeps(baseConfig(), sum),
		"--local", "1", "--gitrepo", dir, "--num_commits", "2", "--output", out)
	if !errors.Is(err, changelog.ErrAuthentication) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat returned %v", statErr)
	}
}

func TestRateLimitIsRetriedOnce(t *testing.T) {
	dir := threeCommitRepo(t)
	sum := &recordingSummarizer{err: changelog.Errorf(changelog.ErrRateLimited, "slow down")}

	stdout, err := execute(t, testDeps(baseConfig(), sum),
		"--local", "1", "--gitrepo", dir, "--num_commits", "1")
	if !errors.Is(err, changelog.ErrRateLimited) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if len(sum.prompts) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(sum.prompts))
	}
	if stdout != "" {
		t.Fatalf("expected empty stdout, got %q", stdout)
	}
}

func TestRemoteBranchNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "repo", "full_name": "owner/repo"})
	})
	mux.HandleFunc("GET /repos/owner/repo/branches/{branch}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Branch not found"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := baseConfig()
	cfg.GitHubAPIURL = srv.URL
	sum := &recordingSummarizer{reply: fixedChangelog}

	stdout, err := execute(t, testDeps(cfg, sum),
		"--local", "0", "--gitrepo", "https://github.com/owner/repo", "--num_commits", "5", "--branch", "dev")
	if !errors.Is(err, changelog.ErrBranchNotFound) {
		t.Fatalf("expected BranchNotFoundError, got %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected empty stdout, got %q", stdout)
	}
	if len(sum.prompts) != 0 {
		t.Fatalf("expected no model call")
	}
}

func TestMissingCredentialFailsBeforeFetching(t *testing.T) {
	deps := Deps{
		LoadConfig:    func() (config.Config, error) { return baseConfig(), nil },
		NewSummarizer: DefaultDeps().NewSummarizer,
	}

	_, err := execute(t, deps,
		"--local", "1", "--gitrepo", filepath.Join(t.TempDir(), "does-not-exist"), "--num_commits", "3")
	if !errors.Is(err, changelog.ErrMissingCredential) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
}

func TestInvalidCommitCount(t *testing.T) {
	sum := &recordingSummarizer{reply: fixedChangelog}
	loaded := false
	deps := testDeps(baseConfig(), sum)
	deps.LoadConfig = func() (config.Config, error) {
		loaded = true
		return baseConfig(), nil
	}

	for _, n := range []string{"0", "-3"} {
		_, err := execute(t, deps, "--local", "1", "--gitrepo", ".", "--num_commits", n)
		if !errors.Is(err, changelog.ErrInvalidCommitCount) {
			t.Fatalf("num_commits %s: expected InvalidCommitCountError, got %v", n, err)
		}
	}
	if loaded || len(sum.prompts) != 0 {
		t.Fatalf("expected validation before any other work")
	}
}

func TestInvalidRepositoryURL(t *testing.T) {
	_, err := execute(t, testDeps(baseConfig(), &recordingSummarizer{}),
		"--local", "0", "--gitrepo", "https://gitlab.com/owner/repo", "--num_commits", "3")
	if !errors.Is(err, changelog.ErrInvalidRepositoryURL) {
		t.Fatalf("expected InvalidRepositoryURLError, got %v", err)
	}
}

func TestLocalFlagMustBeZeroOrOne(t *testing.T) {
	_, err := execute(t, testDeps(baseConfig(), &recordingSummarizer{}),
		"--local", "2", "--gitrepo", ".", "--num_commits", "3")

	var usageErr *cli.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("expected *cli.UsageError, got %v", err)
	}
}

func TestProviderFlagOverridesConfig(t *testing.T) {
	dir := threeCommitRepo(t)
	var seen config.Config
	deps := Deps{
		LoadConfig: func() (config.Config, error) { return baseConfig(), nil },
		NewSummarizer: func(cfg config.Config) (changelog.Summarizer, error) {
			seen = cfg
			return &recordingSummarizer{reply: fixedChangelog}, nil
		},
	}

	if _, err := execute(t, deps,
		"--local", "1", "--gitrepo", dir, "--num_commits", "1", "--provider", "openai", "--model", "gpt-4.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Provider != "openai" || seen.Model != "gpt-4.1" {
		t.Fatalf("expected flag overrides, got provider %q model %q", seen.Provider, seen.Model)
	}
}
