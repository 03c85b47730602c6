package commands

import (
	"fmt"
	"log/slog"
	"os"

	"gummiebot/lib/gumtree"
	"gummiebot/lib/history"
	"gummiebot/lib/listingfile"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(postCmd)
}

// readListings reads every listing directory up front so that a broken one
// fails the command before anything is sent.
func readListings(dirs []string) ([]gumtree.Listing, error) {
	listings := make([]gumtree.Listing, len(dirs))
	for i, dir := range dirs {
		listing, err := listingfile.Read(dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		listings[i] = listing
	}
	return listings, nil
}

var postCmd = &cobra.Command{
	Use:   "post <listing_dir>...",
	Short: "Posts the listing in each directory, in order.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, err := readListings(args)
		if err != nil {
			return err
		}
		for _, listing := range listings {
			fmt.Fprintln(os.Stderr, listing.String())
		}

		session, err := loginSession(cmd.Context())
		if err != nil {
			return err
		}
		rec, err := openRecorder()
		if err != nil {
			return err
		}
		defer rec.Close()

		failed := 0
		for i, listing := range listings {
			ok, err := session.PostListing(cmd.Context(), listing)
			rec.record(cmd.Context(), history.ACTION_POST, listing.Title, ok, err)
			switch {
			case err != nil:
				slog.Error("failed to post listing", "dir", args[i], "err", err)
				failed++
			case !ok:
				slog.Error("site did not confirm listing, a draft may remain", "dir", args[i])
				failed++
			default:
				slog.Info("posted listing", "dir", args[i], "title", listing.Title)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d listings failed", failed, len(listings))
		}
		return nil
	},
}
