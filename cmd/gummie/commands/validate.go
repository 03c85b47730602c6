package commands

import (
	"fmt"
	"log/slog"
	"os"

	"gummiebot/lib/listingfile"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <listing_dir>...",
	Short: "Checks listing directories without contacting the site.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, dir := range args {
			listing, err := listingfile.Read(dir)
			if err != nil {
				slog.Error("invalid listing", "dir", dir, "err", err)
				failed++
				continue
			}
			fmt.Fprintln(os.Stdout, listing.String())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d listings are invalid", failed, len(args))
		}
		return nil
	},
}
