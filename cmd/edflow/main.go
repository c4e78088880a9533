package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/edflow/edflow/internal/config"
	"github.com/edflow/edflow/internal/domain/emergency"
	"github.com/edflow/edflow/internal/scenario"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edflow",
		Short: "Emergency-department patient-flow engine",
	}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func runCmd() *cobra.Command {
	var (
		scenarioPath string
		strict       bool
		startAt      string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a YAML scenario and print the final department snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg)

			start := time.Now().Truncate(time.Minute)
			if startAt != "" {
				start, err = time.Parse(time.RFC3339, startAt)
				if err != nil {
					return fmt.Errorf("parse --start-at: %w", err)
				}
			}

			state, err := scenario.BuildState(cfg, start)
			if err != nil {
				return err
			}
			ctrl := emergency.NewController(state, logger)

			sc, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}
			runner := &scenario.Runner{Controller: ctrl, Log: logger, Strict: strict}
			if err := runner.Run(sc); err != nil {
				return err
			}

			out, err := json.MarshalIndent(ctrl.Snapshot(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to the scenario YAML file")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on the first rejected step")
	cmd.Flags().StringVar(&startAt, "start-at", "", "simulated start time (RFC 3339, default now)")
	cmd.MarkFlagRequired("scenario")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the edflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger().Level(level)
	}
	return logger
}
