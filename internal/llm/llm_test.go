package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-bot/internal/config"
	"screening-bot/internal/metrics"
)

type stubClient struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (s *stubClient) Complete(ctx context.Context, _ string) (string, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func (s *stubClient) Provider() string { return "stub" }
func (s *stubClient) Model() string    { return "stub-1" }

func TestNewClientSelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		provider string
		wantErr  bool
	}{
		{name: "none", cfg: config.LLMConfig{Provider: config.ProviderNone}, provider: config.ProviderNone},
		{name: "empty means none", cfg: config.LLMConfig{}, provider: config.ProviderNone},
		{name: "openai", cfg: config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4.1-mini", MaxTokens: 100}, provider: config.ProviderOpenAI},
		{name: "anthropic", cfg: config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "key", Model: "claude", MaxTokens: 100}, provider: config.ProviderAnthropic},
		{name: "ollama", cfg: config.LLMConfig{Provider: config.ProviderOllama, Host: "http://localhost:11434", Model: "llama3.1"}, provider: config.ProviderOllama},
		{name: "unknown", cfg: config.LLMConfig{Provider: "mystery"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), &tt.cfg, nil, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, client.Provider())
		})
	}
}

func TestNoneClientAlwaysFails(t *testing.T) {
	client, err := NewClient(context.Background(), &config.LLMConfig{Provider: config.ProviderNone}, nil, nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestInstrumentedRecordsMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	stub := &stubClient{text: "1. What is a goroutine?"}
	client := NewInstrumented(stub, time.Second, m, nil)

	text, err := client.Complete(context.Background(), "Write questions about Go")
	require.NoError(t, err)
	assert.Equal(t, "1. What is a goroutine?", text)

	stub.err = errors.New("boom")
	stub.text = ""
	_, err = client.Complete(context.Background(), "Write questions about Go")
	require.Error(t, err)

	snap := m.GetSnapshot()
	assert.EqualValues(t, 2, snap.LLMCallsTotal)
	assert.EqualValues(t, 1, snap.LLMCallsSuccessful)
	count, err := testutil.GatherAndCount(m.Registry(), "llm_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInstrumentedAppliesTimeout(t *testing.T) {
	stub := &stubClient{text: "late", delay: time.Second}
	client := NewInstrumented(stub, 20*time.Millisecond, nil, nil)

	_, err := client.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenCounter(t *testing.T) {
	tc := NewTokenCounter()

	assert.Equal(t, 0, tc.Count(""))
	assert.Greater(t, tc.Count("How do goroutines differ from threads?"), 3)

	var nilCounter *TokenCounter
	assert.Equal(t, 2, nilCounter.Count("abcdefgh"))
}
