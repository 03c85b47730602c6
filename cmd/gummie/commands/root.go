package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gummiebot/lib/telemetry"
	"gummiebot/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool

var cfg Config
var otlp telemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "The config file to use, gummie.json5 is searched for upward from the working directory when unset.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every step and HTTP exchange.")
}

var rootCmd = &cobra.Command{
	Use:          "gummie",
	Short:        "gummie posts and manages classified ads on gumtree.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		serviceutil.InitSlog(*verbose)

		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		otlp, err = telemetry.Setup(cmd.Context(), "gummie", telemetry.Config{Otlp: cfg.Otlp})
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otlp.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
