package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is everything the run needs besides the CLI flags. Credentials are
// read here once and handed to the clients explicitly.
type Config struct {
	Provider     string        `env:"CHANGELOG_PROVIDER"    envDefault:"claude"`
	Model        string        `env:"CHANGELOG_MODEL"`
	MaxTokens    int           `env:"CHANGELOG_MAX_TOKENS"  envDefault:"4096"`
	Temperature  float64       `env:"CHANGELOG_TEMPERATURE" envDefault:"0.3"`
	DiffLimit    int           `env:"CHANGELOG_DIFF_LIMIT"  envDefault:"4000"`
	RetryDelay   time.Duration `env:"CHANGELOG_RETRY_DELAY" envDefault:"5s"`
	ClaudeAPIKey string        `env:"CLAUDE_API_KEY"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	APIBaseURL   string        `env:"CHANGELOG_API_BASE_URL"`
	GitHubToken  string        `env:"GITHUB_TOKEN"`
	GitHubAPIURL string        `env:"GITHUB_API_URL"`
}

// FileOverrides is the shape of the optional YAML file passed with --config.
type FileOverrides struct {
	Provider    *string        `yaml:"provider"`
	Model       *string        `yaml:"model"`
	MaxTokens   *int           `yaml:"max_tokens"`
	Temperature *float64       `yaml:"temperature"`
	DiffLimit   *int           `yaml:"diff_limit"`
	RetryDelay  *time.Duration `yaml:"retry_delay"`
}

// Load reads dotenvPath (if it exists) into the environment without
// overriding variables that are already set, then parses the environment.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ApplyFile overlays the values set in the YAML file at path.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var o FileOverrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if o.Provider != nil {
		c.Provider = *o.Provider
	}
	if o.Model != nil {
		c.Model = *o.Model
	}
	if o.MaxTokens != nil {
		c.MaxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.DiffLimit != nil {
		c.DiffLimit = *o.DiffLimit
	}
	if o.RetryDelay != nil {
		c.RetryDelay = *o.RetryDelay
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if strings.EqualFold(strings.TrimSpace(c.Provider), "openai") {
		return c.OpenAIAPIKey
	}
	return c.ClaudeAPIKey
}
