package ai

import (
	"context"
	"errors"
	"time"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
	"github.com/trdani/ai-powered-changelog/internal/logger"
)

// DefaultRetryDelay is how long to wait before the single retry after throttling.
const DefaultRetryDelay = 5 * time.Second

type retryingClient struct {
	next  changelog.Summarizer
	delay time.Duration
}

// WithRetry retries s exactly once, after delay, when it fails with a
// RateLimitedError. Every other error is returned as is.
func WithRetry(s changelog.Summarizer, delay time.Duration) changelog.Summarizer {
	return &retryingClient{next: s, delay: delay}
}

func (r *retryingClient) Summarize(ctx context.Context, prompt string) (string, error) {
	out, err := r.next.Summarize(ctx, prompt)
	if err == nil || !errors.Is(err, changelog.ErrRateLimited) {
		return out, err
	}

	logger.GlobalLogger.Warnf("Summarization API is throttling requests, retrying once in %s", r.delay)

	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	return r.next.Summarize(ctx, prompt)
}
