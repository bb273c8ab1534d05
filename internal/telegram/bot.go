package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	apiURL = "https://api.telegram.org"

	// Telegram rejects messages longer than 4096 characters.
	maxMessageLength = 4000
	pollTimeout      = 30
)

// Sender delivers text to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Bot is a minimal Bot API client using long polling.
type Bot struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(token string, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		baseURL: fmt.Sprintf("%s/bot%s", apiURL, token),
		client:  &http.Client{Timeout: (pollTimeout + 10) * time.Second},
		logger:  logger.With("component", "telegram"),
	}
}

// GetUpdates fetches updates starting at offset, waiting up to pollTimeout
// seconds for new ones.
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, pollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}

	var response GetUpdatesResponse
	if err := b.do(req, &response); err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("getUpdates: telegram error: %s", response.Description)
	}
	return response.Result, nil
}

// SendMessage sends plain text, splitting it on line boundaries when it
// exceeds the message size limit.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if err := b.send(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(SendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var response SendMessageResponse
	if err := b.do(req, &response); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("sendMessage: telegram error: %s", response.Description)
	}
	return nil
}

func (b *Bot) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// Poll fetches updates until ctx is cancelled and hands each one to handler
// on its own goroutine.
func (b *Bot) Poll(ctx context.Context, handler func(context.Context, Update)) error {
	offset := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			b.logger.Warn("failed to get updates", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			go handler(ctx, update)
		}
	}
}

// splitMessage breaks text into chunks of at most limit bytes, preferring
// line breaks. A single line longer than limit is cut.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				chunks = append(chunks, b.String())
				b.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if b.Len()+len(line) > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
