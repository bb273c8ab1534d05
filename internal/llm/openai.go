package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"screening-bot/internal/config"
)

type OpenAIClient struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIClient(cfg *config.LLMConfig) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(int64(c.maxTokens)),
		Temperature:     openai.Float(c.temperature),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *OpenAIClient) Provider() string { return config.ProviderOpenAI }
func (c *OpenAIClient) Model() string    { return c.model }
