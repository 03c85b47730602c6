package commands

import (
	"fmt"
	"log/slog"

	"gummiebot/lib/history"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <ad_id>...",
	Short: "Deletes ads by id.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		for _, id := range args {
			ok, err := session.DeleteAd(cmd.Context(), id)
			rec.record(cmd.Context(), history.ACTION_DELETE, id, ok, err)
			switch {
			case err != nil:
				slog.Error("failed to delete ad", "id", id, "err", err)
				failed++
			case !ok:
				slog.Error("site did not confirm deletion", "id", id)
				failed++
			default:
				slog.Info("deleted ad", "id", id)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d deletions failed", failed, len(args))
		}
		return nil
	},
}
