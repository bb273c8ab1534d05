package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"screening-bot/internal/intake"
	"screening-bot/internal/interviewer"
	"screening-bot/internal/metrics"
)

const surface = "telegram"

const maxInputLength = 4000

const helpText = `I collect a few details for your job application and then ask technical questions about your stack.

Commands:
/start - begin a screening
/status - show which details are still missing
/restart - discard the current screening and start over
/stop - end the current screening
/help - show this message

Type 'exit' at any time to stop.`

// RateLimiter allows at most limit messages per user within window.
type RateLimiter struct {
	requests map[int64][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) IsAllowed(userID int64) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()

	if requests, exists := rl.requests[userID]; exists {
		var valid []time.Time
		for _, t := range requests {
			if now.Sub(t) < rl.window {
				valid = append(valid, t)
			}
		}
		rl.requests[userID] = valid
	}

	if len(rl.requests[userID]) >= rl.limit {
		return false
	}

	rl.requests[userID] = append(rl.requests[userID], now)
	return true
}

// Handler keeps one session per chat and routes updates to the interviewer.
type Handler struct {
	bot           Sender
	svc           *interviewer.Service
	metrics       *metrics.Metrics
	sessions      map[int64]*chatSession
	sessionsMutex sync.Mutex
	rateLimiter   *RateLimiter
	ttl           time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

func NewHandler(bot Sender, svc *interviewer.Service, m *metrics.Metrics, ttl time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		bot:         bot,
		svc:         svc,
		metrics:     m,
		sessions:    make(map[int64]*chatSession),
		rateLimiter: NewRateLimiter(10, time.Minute),
		ttl:         ttl,
		now:         time.Now,
		logger:      logger.With("component", "telegram"),
	}
}

// RunCleanup abandons idle sessions every interval until ctx is done.
func (h *Handler) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.cleanupInactiveSessions(ctx)
		}
	}
}

func (h *Handler) cleanupInactiveSessions(ctx context.Context) {
	h.sessionsMutex.Lock()
	cutoff := h.now().Add(-h.ttl)
	var expired []*chatSession
	for id, cs := range h.sessions {
		if !cs.mu.TryLock() {
			continue
		}
		if cs.lastActivity.Before(cutoff) {
			expired = append(expired, cs)
			delete(h.sessions, id)
		}
		cs.mu.Unlock()
	}
	active := len(h.sessions)
	h.sessionsMutex.Unlock()

	for _, cs := range expired {
		if cs.active {
			h.svc.Abandon(ctx, cs.session)
		}
	}
	if len(expired) > 0 {
		h.logger.Info("expired idle chats", "count", len(expired))
	}
	h.metrics.SetActiveSessions(surface, active)
}

func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if !h.rateLimiter.IsAllowed(userID) {
		h.reply(ctx, chatID, "Too many messages. Please wait a minute.")
		return
	}

	cs := h.getOrCreateSession(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.lastActivity = h.now()

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, cs, text)
		return
	}
	h.handleUserInput(ctx, cs, text)
}

func (h *Handler) handleCommand(ctx context.Context, cs *chatSession, text string) {
	command := strings.Fields(text)[0]
	// Group chats address commands as /start@botname.
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		if cs.active {
			h.reply(ctx, cs.chatID, "A screening is already in progress. Use /status to check it or /restart to start over.")
			return
		}
		h.begin(ctx, cs)
	case "/help":
		h.reply(ctx, cs.chatID, helpText)
	case "/status":
		if !cs.active {
			h.reply(ctx, cs.chatID, "No screening in progress. Use /start to begin.")
			return
		}
		h.reply(ctx, cs.chatID, h.svc.Describe(cs.session))
	case "/restart":
		h.end(ctx, cs)
		h.begin(ctx, cs)
	case "/stop":
		if !cs.active {
			h.reply(ctx, cs.chatID, "No screening in progress.")
			return
		}
		h.end(ctx, cs)
		h.reply(ctx, cs.chatID, "Screening stopped. Use /start to begin again.")
	default:
		h.reply(ctx, cs.chatID, "Unknown command. Use /help to see the available commands.")
	}
}

func (h *Handler) handleUserInput(ctx context.Context, cs *chatSession, text string) {
	if !cs.active {
		h.reply(ctx, cs.chatID, "Use /start to begin a screening or /help for more information.")
		return
	}

	if problem := checkUserInput(text); problem != "" {
		h.reply(ctx, cs.chatID, problem)
		return
	}

	next, result := h.svc.Handle(ctx, cs.session, text)
	cs.session = next
	h.reply(ctx, cs.chatID, result.Message)

	if next.Done() {
		cs.active = false
		if next.Status == intake.StatusComplete {
			h.reply(ctx, cs.chatID, "Use /start if you would like to go through the screening again.")
		}
	}
}

func (h *Handler) begin(ctx context.Context, cs *chatSession) {
	sess, resp := h.svc.Start(surface)
	cs.session = sess
	cs.active = true
	h.reply(ctx, cs.chatID, resp.Message)
}

// end abandons an unfinished session so a partial record is kept.
func (h *Handler) end(ctx context.Context, cs *chatSession) {
	if cs.active {
		h.svc.Abandon(ctx, cs.session)
	}
	cs.active = false
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.bot.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) getOrCreateSession(chatID int64) *chatSession {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	if cs, exists := h.sessions[chatID]; exists {
		return cs
	}

	cs := &chatSession{chatID: chatID, lastActivity: h.now()}
	h.sessions[chatID] = cs
	h.metrics.SetActiveSessions(surface, len(h.sessions))
	return cs
}

// checkUserInput returns a complaint for oversized and repeated-character
// messages, or "" when the text may reach the engine.
func checkUserInput(text string) string {
	n := utf8.RuneCountInString(text)
	if n > maxInputLength {
		return fmt.Sprintf("Your message is too long (at most %d characters).", maxInputLength)
	}

	if n > 10 {
		first, _ := utf8.DecodeRuneInString(text)
		if strings.Count(text, string(first)) > n*8/10 {
			return "Your message contains too many repeated characters."
		}
	}
	return ""
}
