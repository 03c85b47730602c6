package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"gummiebot/lib/configutil"
	"gummiebot/lib/gumtree"
	"gummiebot/lib/telemetry"
)

const configName = "gummie.json5"

// historyOff disables the history store, an empty value would not override
// the default during the config merge.
const historyOff = "off"

type Config struct {
	BaseUrl             string               `json:"base_url"`
	Username            string               `json:"username"`
	Password            string               `json:"password"`
	RequestsPerSecond   float64              `json:"requests_per_second"`
	TimeoutSeconds      int                  `json:"timeout_seconds"`
	DumpDir             string               `json:"dump_dir"`
	HistoryDb           string               `json:"history_db"`
	SuggestionThreshold float64              `json:"suggestion_threshold"`
	Otlp                telemetry.OtlpConfig `json:"otlp"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:             "https://www.gumtree.com.au/",
		RequestsPerSecond:   2,
		TimeoutSeconds:      30,
		HistoryDb:           "gummie-history.db",
		SuggestionThreshold: gumtree.DefaultSuggestionThreshold,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) HistoryEnabled() bool {
	return c.HistoryDb != "" && c.HistoryDb != historyOff
}

// loadConfig reads the config at path, or searches for gummie.json5 upward
// from the working directory when path is empty. Only an explicitly given
// config is required to exist.
func loadConfig(path string) (Config, error) {
	if path != "" {
		return configutil.ReadConfig(path, defaultConfig())
	}

	config, err := configutil.ReadRecursively(".", configName, defaultConfig())
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "name", configName)
		return defaultConfig(), nil
	}
	return config, err
}
