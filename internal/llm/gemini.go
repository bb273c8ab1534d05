package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"screening-bot/internal/config"
)

type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewGeminiClient(ctx context.Context, cfg *config.LLMConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens), //nolint:gosec // validated positive and small
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *GeminiClient) Provider() string { return config.ProviderGemini }
func (c *GeminiClient) Model() string    { return c.model }
