// Package cli wires the cobra command tree: serve, onboard, log,
// baseline, dashboard, stats, and demo seeding.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/carbonbuddy/internal/config"
	"github.com/rshade/carbonbuddy/internal/logging"
)

// Package-level state shared between PersistentPreRunE and the
// subcommands for one CLI invocation.
var (
	cfg       *config.Config  //nolint:gochecknoglobals // Set once per invocation in PersistentPreRunE.
	logger    zerolog.Logger  //nolint:gochecknoglobals // Root logger for the invocation.
	logResult *logging.Result //nolint:gochecknoglobals // Held for cleanup in PersistentPostRunE.
)

// NewRootCmd creates the root command.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "carbonbuddy",
		Short:   "Carbon savings tracker",
		Long:    "CarbonBuddy: estimate personal carbon baselines and track CO2e savings from everyday choices",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; a missing file is not an error.
			_ = godotenv.Load()

			configPath, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			if factorsPath, _ := cmd.Flags().GetString("factors"); factorsPath != "" {
				cfg.Data.FactorsPath = factorsPath
			}
			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				cfg.Data.SQLitePath = dbPath
			}

			logCfg := logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				File:   cfg.Logging.File,
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logCfg.Level = "debug"
				logCfg.Format = logging.FormatConsole
			}

			result, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			logResult = &result
			logger = logging.ComponentLogger(result.Logger, "cli")

			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logResult != nil {
				return logResult.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "path to config YAML (default $CARBONBUDDY_CONFIG)")
	cmd.PersistentFlags().String("factors", "", "path to an emission-factor dataset (default: embedded)")
	cmd.PersistentFlags().String("db", "", "path to the SQLite database (default: in-memory)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(),
		newBaselineCmd(),
		newOnboardCmd(),
		newLogCmd(),
		newDashboardCmd(),
		newStatsCmd(),
		newDemoCmd(),
	)

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ver string) int {
	if err := NewRootCmd(ver).Execute(); err != nil {
		return 1
	}
	return 0
}

const rootCmdExample = `  # Run the HTTP API
  carbonbuddy serve --db carbonbuddy.db

  # Estimate an annual baseline footprint
  carbonbuddy baseline --commute-mode car_petrol --distance 10 --diet meat_mixed_meal

  # Onboard a user, then log classified activities
  carbonbuddy onboard --user alice --commute-mode car_petrol --distance 10 --diet meat_mixed_meal --db carbonbuddy.db
  carbonbuddy log --user alice --action food:vegan_meal:1 --db carbonbuddy.db

  # Inspect dashboards and collective stats
  carbonbuddy dashboard --user alice --db carbonbuddy.db
  carbonbuddy stats --db carbonbuddy.db

  # Seed two weeks of demo data
  carbonbuddy demo seed --days 14 --db carbonbuddy.db`
