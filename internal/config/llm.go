package config

import (
	"fmt"
	"time"
)

const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4.1-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "llama3.1",
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Host        string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// LoadLLMConfig reads the text-generation settings from the environment.
func LoadLLMConfig() *LLMConfig {
	provider := getEnv("LLM_PROVIDER", ProviderNone)

	config := &LLMConfig{
		Provider:    provider,
		Model:       getEnv("LLM_MODEL", defaultModels[provider]),
		Host:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 600),
		Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		Timeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
	}

	switch provider {
	case ProviderOpenAI:
		config.APIKey = getEnv("OPENAI_API_KEY", "")
	case ProviderAnthropic:
		config.APIKey = getEnv("ANTHROPIC_API_KEY", "")
	case ProviderGemini:
		config.APIKey = getEnv("GEMINI_API_KEY", "")
	}

	return config
}

func (c *LLMConfig) ValidateConfig() error {
	switch c.Provider {
	case ProviderNone, ProviderOllama:
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for LLM_PROVIDER=%s", c.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}

	if c.Provider != ProviderNone && c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required for LLM_PROVIDER=%s", c.Provider)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}

	return nil
}

// GetModelInfo returns a loggable description of the model settings.
func (c *LLMConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.Provider,
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
	}
}
