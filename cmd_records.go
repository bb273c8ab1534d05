package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"screening-bot/internal/record"
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage stored candidate records",
	}
	cmd.AddCommand(
		newRecordsListCmd(opts),
		newRecordsShowCmd(opts),
		newRecordsDeleteCmd(opts),
		newRecordsPurgeCmd(opts),
	)
	return cmd
}

func newRecordsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tNAME\tPOSITION\tTECH STACK\tCREATED")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Status, s.Name, s.Position,
					strings.Join(s.TechStack, ", "),
					s.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newRecordsShowCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a record summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := record.Export(rec, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", record.FormatText, "output format: json or txt")
	return cmd
}

func newRecordsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newRecordsPurgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete records past their retention date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cfg, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Purge(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d record(s) from %s storage\n", n, cfg.Storage.Backend)
			return nil
		},
	}
}
