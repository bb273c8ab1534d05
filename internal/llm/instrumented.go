package llm

import (
	"context"
	"log/slog"
	"time"

	"screening-bot/internal/metrics"
)

// Instrumented bounds every call with a timeout and reports it to metrics
// and the log.
type Instrumented struct {
	next    Client
	timeout time.Duration
	metrics *metrics.Metrics
	tokens  *TokenCounter
	logger  *slog.Logger
}

func NewInstrumented(next Client, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{
		next:    next,
		timeout: timeout,
		metrics: m,
		tokens:  NewTokenCounter(),
		logger:  logger.With("component", "llm", "provider", next.Provider()),
	}
}

func (c *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.next.Complete(ctx, prompt)
	elapsed := time.Since(start)

	promptTokens := c.tokens.Count(prompt)
	completionTokens := 0
	if err == nil {
		completionTokens = c.tokens.Count(text)
	}
	c.metrics.ObserveLLMRequest(c.next.Provider(), elapsed, promptTokens, completionTokens, err == nil)

	if err != nil {
		c.logger.Debug("completion failed", "duration", elapsed, "error", err)
		return "", err
	}

	c.logger.Debug("completion", "model", c.next.Model(), "duration", elapsed,
		"prompt_tokens", promptTokens, "completion_tokens", completionTokens)
	return text, nil
}

func (c *Instrumented) Provider() string { return c.next.Provider() }
func (c *Instrumented) Model() string    { return c.next.Model() }
