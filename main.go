package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/trdani/ai-powered-changelog/cmd"
	"github.com/trdani/ai-powered-changelog/cmd/generate"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unset"
	gitCommit = "uncommitted"
)

func main() {
	versionInfo := cmd.VersionInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cmd.NewRootCmd(versionInfo, generate.DefaultDeps())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.GlobalLogger.Errorf("%s", cmd.Describe(err))
		os.Exit(cmd.ExitCode(err))
	}
}
