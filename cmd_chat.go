package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"screening-bot/internal/console"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Hold a screening conversation in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Keep the conversation readable unless logging was asked for.
			if opts.logLevel == "" {
				opts.logLevel = "warn"
			}

			a, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return console.New(a.svc, os.Stdin, os.Stdout).Run(ctx)
		},
	}
}
