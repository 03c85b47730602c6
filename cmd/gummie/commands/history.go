package commands

import (
	"fmt"
	"time"

	"gummiebot/lib/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 20, "The amount of attempts to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Prints the most recent post and delete attempts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HistoryEnabled() {
			return fmt.Errorf("history is disabled in the config")
		}
		store, err := history.Open(cfg.HistoryDb)
		if err != nil {
			return err
		}
		defer store.Close()

		attempts, err := store.Recent(cmd.Context(), *historyLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Time", "Action", "Subject", "Success", "Error"})
		for _, a := range attempts {
			t.AppendRow(table.Row{
				a.CreatedAt.Local().Format(time.DateTime),
				a.Action,
				a.Subject,
				a.Success,
				a.Error,
			})
		}
		t.Render()
		return nil
	},
}
