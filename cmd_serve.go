package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"screening-bot/internal/storage"
	"screening-bot/internal/telegram"
	"screening-bot/internal/web"
)

const (
	sweepInterval = time.Minute
	purgeInterval = time.Hour
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var withTelegram bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web chat and API, and optionally the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if withTelegram && a.cfg.Telegram.Token == "" {
				return errors.New("TELEGRAM_BOT_TOKEN is required with --telegram")
			}

			srv := web.NewServer(a.cfg.Server, a.svc, a.metrics, a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Listen)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				a.logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			g.Go(func() error { return srv.RunJanitor(gctx, sweepInterval) })
			g.Go(func() error { return runPurge(gctx, a.store, purgeInterval, a.logger) })

			if withTelegram {
				bot := telegram.New(a.cfg.Telegram.Token, a.logger)
				handler := telegram.NewHandler(bot, a.svc, a.metrics, a.cfg.Server.SessionTTL, a.logger)
				g.Go(func() error { return bot.Poll(gctx, handler.HandleUpdate) })
				g.Go(func() error { return handler.RunCleanup(gctx, sweepInterval) })
			}

			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&withTelegram, "telegram", false, "also run the Telegram bot")
	return cmd
}

// runPurge deletes records past their retention date, once at start and then
// every interval.
func runPurge(ctx context.Context, store storage.Store, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := store.Purge(ctx, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("retention purge failed", "error", err)
		case n > 0:
			logger.Info("purged expired records", "count", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
