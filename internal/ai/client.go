package ai

import (
	"fmt"
	"strings"

	"github.com/trdani/ai-powered-changelog/internal/ai/claude"
	"github.com/trdani/ai-powered-changelog/internal/ai/openai"
	"github.com/trdani/ai-powered-changelog/internal/changelog"
)

const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// credentialEnv names the variable each provider's key is read from, for error messages.
var credentialEnv = map[string]string{
	ProviderClaude: "CLAUDE_API_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
}

type AIOptions struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature *float64
}

// NewAIClient builds the summarizer for opts.Provider. The key is checked
// here so a missing credential fails before any request is made.
func NewAIClient(opts AIOptions) (changelog.Summarizer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderClaude
	}

	envVar, ok := credentialEnv[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported AI provider: %s", opts.Provider)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, changelog.Errorf(changelog.ErrMissingCredential,
			"%s API key not set, please set the '%s' environment variable", provider, envVar)
	}

	switch provider {
	case ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			BaseURL:     opts.BaseURL,
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		}), nil
	default:
		return claude.NewClient(claude.Config{
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			BaseURL:     opts.BaseURL,
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		}), nil
	}
}
