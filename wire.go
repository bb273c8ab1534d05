package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"screening-bot/internal/config"
	"screening-bot/internal/events"
	"screening-bot/internal/intake"
	"screening-bot/internal/interviewer"
	"screening-bot/internal/llm"
	"screening-bot/internal/metrics"
	"screening-bot/internal/questions"
	"screening-bot/internal/record"
	"screening-bot/internal/storage"
)

// app holds the shared dependencies of every command.
type app struct {
	cfg       *config.AppConfig
	intake    *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	store     storage.Store
	publisher events.Publisher
	svc       *interviewer.Service
}

func loadConfig(opts *rootOptions) (*config.AppConfig, *slog.Logger) {
	cfg := config.LoadAppConfig()
	if opts.intakePath != "" {
		cfg.IntakePath = opts.intakePath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	logger := newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger
}

func loadIntake(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openStore opens only the record store, for commands that never converse.
func openStore(ctx context.Context, opts *rootOptions) (storage.Store, *config.AppConfig, error) {
	cfg, _ := loadConfig(opts)
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	return store, cfg, nil
}

func buildApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, logger := loadConfig(opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	intakeCfg, err := loadIntake(cfg.IntakePath)
	if err != nil {
		return nil, fmt.Errorf("load intake config: %w", err)
	}

	bank, err := questions.LoadBank(intakeCfg.Questions.FallbackBank)
	if err != nil {
		return nil, fmt.Errorf("load fallback questions: %w", err)
	}

	m := metrics.NewMetrics()

	client, err := llm.NewClient(ctx, &cfg.LLM, m, logger)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	logger.Info("text generation configured", "llm", cfg.LLM.GetModelInfo())

	gen := questions.NewGenerator(client, bank, questions.Options{
		Min:      intakeCfg.GetMinQuestions(),
		Max:      intakeCfg.GetMaxQuestions(),
		Fallback: intakeCfg.Questions.Fallback,
		Metrics:  m,
		Logger:   logger,
	})
	engine := intake.NewEngine(intakeCfg, gen, intake.WithLogger(logger))

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	publisher, err := openPublisher(cfg.Events, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	recorder := record.NewRecorder(record.RecorderConfig{
		Retention:    cfg.Storage.Retention(),
		HashKey:      cfg.Storage.HashKey,
		MinQuestions: intakeCfg.GetMinQuestions(),
		MaxQuestions: intakeCfg.GetMaxQuestions(),
	})

	svc := interviewer.New(interviewer.Deps{
		Engine:    engine,
		Recorder:  recorder,
		Store:     store,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	})

	logger.Info("screening service ready", "storage", store.Backend(), "fields", intakeCfg.GetTotalFields())

	return &app{
		cfg:       cfg,
		intake:    intakeCfg,
		logger:    logger,
		metrics:   m,
		store:     store,
		publisher: publisher,
		svc:       svc,
	}, nil
}

func openPublisher(cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{}, nil
	}
	pub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.Exchange, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return pub, nil
}

func (a *app) Close() error {
	return errors.Join(a.publisher.Close(), a.store.Close())
}
