package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var categoriesJson *bool

func init() {
	categoriesJson = categoriesCmd.Flags().Bool("json", false, "Print the categories as JSON instead of a table.")
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:   "categories [--json]",
	Short: "Prints every leaf category and its id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		categories, err := session.Categories(cmd.Context())
		if err != nil {
			return err
		}

		if *categoriesJson {
			// map keys are marshalled in sorted order
			out, err := json.MarshalIndent(categories, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"Category", "Id"})
		for _, name := range categories.Names() {
			t.AppendRow(table.Row{name, categories[name]})
		}
		t.Render()
		return nil
	},
}
