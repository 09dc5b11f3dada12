package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/logging"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", errors.Newf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

// loadConfig reads the season config and installs the default logger at the
// configured level. A non-empty levelFlag wins over the config.
func loadConfig(configFlag, levelFlag string) (*config.Config, error) {
	path, err := resolveConfigPath(configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	level := cfg.LogLevel
	if levelFlag != "" {
		level = levelFlag
	}
	logging.SetDefault(logging.New(logging.ParseLevel(level)))
	logging.Default().Debug("config loaded", "path", path, "groups", len(cfg.Groups), "weeks", cfg.Season.Weeks)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "interclub",
		Short: "Interclub team league fixtures and standings",
	}

	var configFile, logLevel string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: log_level from config)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	rootCmd.AddCommand(
		initCmd,
		newFixturesCmd(&configFile, &logLevel),
		newStandingsCmd(&configFile, &logLevel),
	)

	err := rootCmd.ExecuteContext(ctx)
	_ = logging.Default().Sync()
	if err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return errors.Newf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return errors.Wrap(err, "writing config")
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Interclub Season Configuration
# ==============================
# This file defines the season calendar and the groups whose fixtures
# and standings are managed by interclub.

season:
  name: "2026 Interclub"

  # Week 1 starts on start_date; every later week starts 7 days after the
  # previous one.
  start_date: "2026-09-07"

  # Each group's double round-robin is spread as evenly as possible over
  # this many weeks.
  weeks: 10

  # Encounters of a week are placed on these weekdays, in turn.
  play_days: [monday, wednesday, thursday]

  # Blackout dates are days when no encounter is placed, e.g. when the
  # hall is unavailable.
  blackout_dates:
    - date: "2026-11-11"
      reason: "Armistice Day"

# Groups and their teams. Team ids must be unique across all groups and are
# what results files refer to. Every pair of teams in a group meets twice,
# once at each team's home.
groups:
  - number: 1
    teams:
      - {id: ghent-1, name: "BC Ghent 1"}
      - {id: lokeren-1, name: "BC Lokeren 1"}
      - {id: aalst-1, name: "Aalst Smash 1"}
      - {id: deinze-1, name: "Deinze Shuttles 1"}
  - number: 2
    teams:
      - {id: brugge-1, name: "Brugge BC 1"}
      - {id: oostende-1, name: "Oostende Feathers 1"}
      - {id: kortrijk-1, name: "Kortrijk BC 1"}

# debug, info, warn or error. Logs go to stderr.
log_level: info
`
