// Package llm wraps the text-generation providers behind a single
// prompt-in, text-out interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"screening-bot/internal/config"
	"screening-bot/internal/metrics"
)

var (
	// ErrNoProvider is returned by the client used when no provider is configured.
	ErrNoProvider = errors.New("no text-generation provider configured")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Client turns a prompt into a completion.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// NewClient builds the provider client named by cfg and wraps it with timeout,
// metrics and logging.
func NewClient(ctx context.Context, cfg *config.LLMConfig, m *metrics.Metrics, logger *slog.Logger) (Client, error) {
	var (
		base Client
		err  error
	)

	switch cfg.Provider {
	case config.ProviderNone, "":
		base = noneClient{}
	case config.ProviderOpenAI:
		base = NewOpenAIClient(cfg)
	case config.ProviderAnthropic:
		base = NewAnthropicClient(cfg)
	case config.ProviderGemini:
		base, err = NewGeminiClient(ctx, cfg)
	case config.ProviderOllama:
		base, err = NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	return NewInstrumented(base, cfg.Timeout, m, logger), nil
}

type noneClient struct{}

func (noneClient) Complete(context.Context, string) (string, error) { return "", ErrNoProvider }
func (noneClient) Provider() string                                 { return config.ProviderNone }
func (noneClient) Model() string                                    { return "" }
