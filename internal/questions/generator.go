package questions

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"screening-bot/internal/llm"
	"screening-bot/internal/metrics"
)

type cacheKey struct {
	technology string
	difficulty Difficulty
}

// Generator asks the model for one question set per technology, falling back
// to the bank whenever a call fails or yields fewer than Min questions.
type Generator struct {
	client   llm.Client
	bank     *Bank
	min      int
	max      int
	fallback int
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey][]string
}

type Options struct {
	Min      int
	Max      int
	Fallback int
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func NewGenerator(client llm.Client, bank *Bank, opts Options) *Generator {
	if bank == nil {
		bank = DefaultBank()
	}
	if opts.Min <= 0 {
		opts.Min = 3
	}
	if opts.Max < opts.Min {
		opts.Max = opts.Min
	}
	if opts.Fallback < opts.Min || opts.Fallback > opts.Max {
		opts.Fallback = opts.Min
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Generator{
		client:   client,
		bank:     bank,
		min:      opts.Min,
		max:      opts.Max,
		fallback: opts.Fallback,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "questions"),
		cache:    make(map[cacheKey][]string),
	}
}

// Generate returns exactly one set per technology, in order. Calls are made
// one technology at a time and a failure only affects its own technology.
func (g *Generator) Generate(ctx context.Context, stack []string, experienceYears float64) Record {
	record := make(Record, 0, len(stack))
	for _, tech := range stack {
		set := g.generateOne(ctx, tech, experienceYears)
		g.metrics.QuestionSet(set.Fallback)
		record = append(record, set)
	}
	return record
}

func (g *Generator) generateOne(ctx context.Context, tech string, years float64) Set {
	key := cacheKey{technology: strings.ToLower(tech), difficulty: DifficultyFor(years)}
	if cached, ok := g.cached(key); ok {
		return Set{Technology: tech, Questions: cached}
	}

	if g.client == nil || ctx.Err() != nil {
		return g.fallbackSet(tech, "unavailable")
	}

	text, err := g.client.Complete(ctx, BuildPrompt(tech, years, g.min, g.max))
	if err != nil {
		g.logger.Warn("question generation failed", "technology", tech, "error", err)
		return g.fallbackSet(tech, "error")
	}

	parsed := ParseQuestions(text, g.max)
	if len(parsed) < g.min {
		g.logger.Warn("too few questions parsed", "technology", tech, "parsed", len(parsed), "min", g.min)
		return g.fallbackSet(tech, "partial")
	}

	g.store(key, parsed)
	return Set{Technology: tech, Questions: append([]string(nil), parsed...)}
}

func (g *Generator) fallbackSet(tech, reason string) Set {
	g.logger.Info("using fallback questions", "technology", tech, "reason", reason, "bank_entry", g.bank.Known(tech))
	return g.bank.Fallback(tech, g.fallback)
}

func (g *Generator) cached(key cacheKey) ([]string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	qs, ok := g.cache[key]
	if !ok {
		return nil, false
	}
	return append([]string(nil), qs...), true
}

func (g *Generator) store(key cacheKey, qs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache[key] = append([]string(nil), qs...)
}
