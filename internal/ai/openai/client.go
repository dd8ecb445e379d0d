package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.3

	requestTimeout = 2 * time.Minute
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	// Temperature is DefaultTemperature when nil. Zero is sent as is.
	Temperature *float64
}

// Client calls OpenAI's Responses API.
type Client struct {
	client      openai.Client
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
		client:      openai.NewClient(opts...),
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

// Summarize returns the response's output text unchanged.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	logger.GlobalLogger.Verbosef("Requesting changelog from OpenAI (%s, %d prompt bytes)", c.model, len(prompt))

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxTokens),
		Temperature:     openai.Float(c.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if resp.Status == "incomplete" {
		return "", changelog.Errorf(changelog.ErrUpstreamService,
			"OpenAI response is incomplete (reason = %s, maxOutputTokens = %d)",
			resp.IncompleteDetails.Reason, c.maxTokens)
	}

	text := resp.OutputText()
	if text == "" {
		return "", changelog.Errorf(changelog.ErrUpstreamService, "OpenAI output text is missing (status = %s)", resp.Status)
	}
	return text, nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("call OpenAI API: %w", err)
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return changelog.Wrap(changelog.ErrUpstreamService, err, "call OpenAI API")
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return changelog.Wrap(changelog.ErrAuthentication, err, "OpenAI API rejected the API key")
	case http.StatusTooManyRequests:
		return changelog.Wrap(changelog.ErrRateLimited, err, "OpenAI API is throttling requests")
	default:
		return changelog.Wrap(changelog.ErrUpstreamService, err, "OpenAI API responded with status %d", apiErr.StatusCode)
	}
}
