package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trdani/ai-powered-changelog/cmd/generate"
	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/cli"
)

const (
	ExitFailure = 1
	ExitUsage   = 2
)

type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

func NewRootCmd(versionInfo VersionInfo, deps generate.Deps) *cobra.Command {
	rootCmd := generate.NewGenerateCmd(deps)
	rootCmd.Version = formatVersion(versionInfo)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	return rootCmd
}

func formatVersion(versionInfo VersionInfo) string {
	return fmt.Sprintf("ai-changelog v%s\nBuild Date: %s\nGit Commit: %s",
		versionInfo.Version,
		versionInfo.BuildDate,
		versionInfo.GitCommit)
}

// Describe renders err for stderr, prefixed with its category when it has one.
func Describe(err error) string {
	if kind := changelog.KindOf(err); kind != nil {
		return fmt.Sprintf("%s: %v", kind.Name(), err)
	}
	return err.Error()
}

// ExitCode maps err to the process exit status: 2 for command-line mistakes,
// 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsUsageError(err) {
		return ExitUsage
	}
	return ExitFailure
}

func IsUsageError(err error) bool {
	var usageErr *cli.UsageError
	if errors.As(err, &usageErr) {
		return true
	}
	if kind := changelog.KindOf(err); kind != nil {
		return kind.Usage()
	}
	// cobra reports missing required flags and stray arguments as plain errors
	msg := err.Error()
	return strings.HasPrefix(msg, "required flag") || strings.HasPrefix(msg, "unknown command")
}
