package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

const (
	DefaultModel       = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.3

	requestTimeout = 2 * time.Minute

	// statusOverloaded is Anthropic's "overloaded" status, treated like throttling.
	statusOverloaded = 529
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	// Temperature is DefaultTemperature when nil. Zero is sent as is.
	Temperature *float64
}

// Client calls the Anthropic Messages API.
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &Client{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: DefaultTemperature,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if cfg.Temperature != nil {
		c.temperature = *cfg.Temperature
	}
	return c
}

// Summarize sends prompt as a single user message and returns the text blocks
// of the reply unchanged.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	logger.GlobalLogger.Verbosef("Requesting changelog from Claude (%s, %d prompt bytes)", c.model, len(prompt))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", changelog.Errorf(changelog.ErrUpstreamService,
			"Claude returned no text (stop reason: %s)", msg.StopReason)
	}

	logger.GlobalLogger.Debugf("Claude usage: %d input tokens, %d output tokens",
		msg.Usage.InputTokens, msg.Usage.OutputTokens)
	return sb.String(), nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("call Claude API: %w", err)
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return changelog.Wrap(changelog.ErrUpstreamService, err, "call Claude API")
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return changelog.Wrap(changelog.ErrAuthentication, err, "Claude API rejected the API key")
	case http.StatusTooManyRequests, statusOverloaded:
		return changelog.Wrap(changelog.ErrRateLimited, err, "Claude API is throttling requests")
	default:
		return changelog.Wrap(changelog.ErrUpstreamService, err, "Claude API responded with status %d", apiErr.StatusCode)
	}
}
