package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adsCmd)
}

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Prints the ads owned by the logged in user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loginSession(cmd.Context())
		if err != nil {
			return err
		}
		ads, err := session.OwnedAds(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Title"})
		for _, ad := range ads.Records() {
			t.AppendRow(table.Row{ad.Id, ad.Title})
		}
		t.Render()
		return nil
	},
}
