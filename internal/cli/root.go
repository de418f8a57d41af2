// Package cli provides the calai command tree.
package cli

import (
	"fmt"

	"github.com/rasheuristics/CalAI-sub003/internal/config"
	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
	flagTimezone string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "calai",
	Short: "Day timeline for your calendars",
	Long:  "calai renders a day timeline of events from local and imported calendars,\nwith overlap lanes, collapsible gaps and drag repositioning.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		level := cfg.Logging.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		logging.Init(logging.Config{
			Level:        level,
			Format:       cfg.Logging.Format,
			EnableCaller: cfg.Logging.EnableCaller,
		})
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagTimezone, "tz", "", "display timezone (IANA name, overrides config)")
}

// Execute runs the calai CLI.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFromFile(flagConfig)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flagTimezone != "" {
		cfg.Global.Timezone = flagTimezone
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func openStore() (*store.DB, error) {
	db, err := store.Open(appConfig.DatabasePath(), appConfig.Database.BusyTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
