package main

import (
	"fmt"
	"os"

	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/pkg/logger"
	"github.com/spf13/cobra"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "intervue",
	Short:         "Interview practice and skill progress service",
	Long:          "intervue evaluates interview answers with a language model and tracks per-domain skill progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides "+config.FileEnv+")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taxonomyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(simulateCmd)
}

// setup loads configuration and initializes logging from it.
func setup(cmd *cobra.Command) error {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv(config.FileEnv, p); err != nil {
			return err
		}
	}

	loaded, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(loaded.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(loaded.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", loaded.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	cfg = loaded
	return nil
}
