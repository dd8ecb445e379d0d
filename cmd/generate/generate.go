package generate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trdani/ai-powered-changelog/internal/ai"
	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/cli"
	"github.com/trdani/ai-powered-changelog/internal/config"
	"github.com/trdani/ai-powered-changelog/internal/git"
	"github.com/trdani/ai-powered-changelog/internal/github"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// Deps are the pieces a test may swap out.
type Deps struct {
	LoadConfig    func() (config.Config, error)
	NewSummarizer func(cfg config.Config) (changelog.Summarizer, error)
}

// DefaultDeps reads .env and the environment and talks to the real model API.
func DefaultDeps() Deps {
	return Deps{
		LoadConfig: func() (config.Config, error) {
			return config.Load(".env")
		},
		NewSummarizer: func(cfg config.Config) (changelog.Summarizer, error) {
			return ai.NewAIClient(ai.AIOptions{
				Provider:    cfg.Provider,
				Model:       cfg.Model,
				APIKey:      cfg.APIKey(),
				BaseURL:     cfg.APIBaseURL,
				MaxTokens:   cfg.MaxTokens,
				Temperature: &cfg.Temperature,
			})
		},
	}
}

type options struct {
	local      int
	gitRepo    string
	numCommits int
	branch     string
	output     string
	provider   string
	model      string
	configPath string
	verbose    bool
	debug      bool
}

func NewGenerateCmd(deps Deps) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ai-changelog",
		Short: "Summarize recent commits as a user-facing changelog",
		Long: `ai-changelog reads the last N commits of a local repository or a public
GitHub repository and asks a language model to turn them into a short,
plain-English Markdown changelog for non-technical users.

The changelog is written to standard output. Diagnostics go to standard error.`,
		Example: `  # Summarize the last 10 commits of a local checkout
  ai-changelog --local 1 --gitrepo ~/src/project --num_commits 10

  # Summarize the last 5 commits on the dev branch of a GitHub repository
  ai-changelog --local 0 --gitrepo https://github.com/owner/repo --num_commits 5 --branch dev

  # Use OpenAI instead of Claude and save the result
  ai-changelog --local 1 --gitrepo . --num_commits 20 --provider openai -o CHANGELOG.md`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.local, "local", 0, "`0|1`: 1 if --gitrepo is a local path, 0 if it is a GitHub URL")
	flags.StringVar(&opts.gitRepo, "gitrepo", "", "local repository `path` or https://github.com/<owner>/<repo>")
	flags.IntVar(&opts.numCommits, "num_commits", 0, "number of most recent commits to summarize (`n` > 0)")
	flags.StringVar(&opts.branch, "branch", changelog.DefaultBranch, "`branch` to summarize, remote repositories only")
	flags.StringVarP(&opts.output, "output", "o", "", "write the changelog to `file` instead of standard output")
	flags.StringVar(&opts.provider, "provider", "", "summarization `provider`: claude or openai")
	flags.StringVar(&opts.model, "model", "", "`model` name, overrides the provider default")
	flags.StringVar(&opts.configPath, "config", "", "YAML `file` with model and prompt overrides")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output")

	for _, name := range []string{"local", "gitrepo", "num_commits"} {
		_ = cmd.MarkFlagRequired(name)
	}

	groups := []cli.FlagGroup{
		cli.Group(cmd, "Repository", "local", "gitrepo", "num_commits", "branch"),
		cli.Group(cmd, "Summarization", "provider", "model", "config"),
		cli.Group(cmd, "Output", "output", "verbose", "debug"),
	}
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Fprint(c.OutOrStderr(), cli.FormatUsage(c, groups))
		return nil
	})
	cmd.SetFlagErrorFunc(cli.FlagErrorFunc)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger.Init(opts.verbose, opts.debug, true)
		return run(cmd, deps, opts)
	}

	return cmd
}

func run(cmd *cobra.Command, deps Deps, opts options) error {
	if opts.local != 0 && opts.local != 1 {
		return &cli.UsageError{Err: fmt.Errorf("--local must be 0 or 1, got %d", opts.local)}
	}

	req := changelog.Request{
		Source: opts.gitRepo,
		Local:  opts.local == 1,
		Count:  opts.numCommits,
		Branch: opts.branch,
	}

	if err := changelog.ValidateCount(req.Count); err != nil {
		return err
	}
	if req.Local {
		if cmd.Flags().Changed("branch") {
			logger.GlobalLogger.Warnf("--branch is ignored for local repositories, using the checked out branch")
		}
	} else if _, err := github.ParseRepoURL(req.Source); err != nil {
		return err
	}

	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	if opts.configPath != "" {
		if err := cfg.ApplyFile(opts.configPath); err != nil {
			return err
		}
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}

	summarizer, err := deps.NewSummarizer(cfg)
	if err != nil {
		return err
	}

	source, err := newSource(req, cfg)
	if err != nil {
		return err
	}

	gen := changelog.Generator{
		Source:     source,
		Prompt:     ai.NewPromptBuilder(cfg.DiffLimit),
		Summarizer: ai.WithRetry(summarizer, cfg.RetryDelay),
	}

	markdown, err := gen.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := changelog.WriteFile(opts.output, markdown); err != nil {
			return err
		}
		logger.GlobalLogger.Successf("Changelog written to %s", opts.output)
		return nil
	}
	return changelog.Emitter{W: cmd.OutOrStdout()}.Emit(markdown)
}

func newSource(req changelog.Request, cfg config.Config) (changelog.Source, error) {
	if req.Local {
		return git.LocalSource{}, nil
	}
	return github.NewRemoteSource(cfg.GitHubToken, cfg.GitHubAPIURL)
}
