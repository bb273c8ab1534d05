package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"screening-bot/internal/config"
)

type OllamaClient struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOllamaClient(cfg *config.LLMConfig) (*OllamaClient, error) {
	host, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", cfg.Host, err)
	}

	return &OllamaClient{
		client:      api.NewClient(host, http.DefaultClient),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}

	text := strings.TrimSpace(response.Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *OllamaClient) Provider() string { return config.ProviderOllama }
func (c *OllamaClient) Model() string    { return c.model }
