package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"screening-bot/internal/telegram"
)

func newTelegramCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run only the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Telegram.Token == "" {
				return errors.New("TELEGRAM_BOT_TOKEN is not set")
			}

			bot := telegram.New(a.cfg.Telegram.Token, a.logger)
			handler := telegram.NewHandler(bot, a.svc, a.metrics, a.cfg.Server.SessionTTL, a.logger)
			a.logger.Info("telegram bot polling")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return bot.Poll(gctx, handler.HandleUpdate) })
			g.Go(func() error { return handler.RunCleanup(gctx, sweepInterval) })
			return g.Wait()
		},
	}
}
