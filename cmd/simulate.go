package main

import (
	"fmt"
	"time"

	"github.com/okian/intervue/internal/simulate"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Post random observations to a running server and check progress consistency",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		var sc simulate.Config
		sc.BaseURL, _ = f.GetString("url")
		sc.Users, _ = f.GetInt("users")
		sc.Observations, _ = f.GetInt("observations")
		sc.Workers, _ = f.GetInt("workers")
		sc.Timeout, _ = f.GetDuration("timeout")
		sc.UnknownRatio, _ = f.GetFloat64("unknown-ratio")
		sc.Seed, _ = f.GetInt64("seed")
		sc.Verbose, _ = f.GetBool("verbose")

		stats, err := simulate.Run(cmd.Context(), &sc)
		if err != nil {
			return err
		}
		if !stats.OK() {
			return fmt.Errorf("%d inconsistencies, %d failed requests", stats.Inconsistent, stats.Failed)
		}
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.String("url", "http://localhost:9080", "Base URL of the server")
	f.Int("users", 20, "Number of distinct users")
	f.Int("observations", 1000, "Number of observations to post")
	f.Int("workers", 8, "Number of concurrent clients")
	f.Duration("timeout", 10*time.Second, "HTTP request timeout")
	f.Float64("unknown-ratio", 0.05, "Share of observations naming a skill outside the taxonomy")
	f.Int64("seed", 0, "Random seed (0 uses the clock)")
	f.Bool("verbose", false, "Log every inconsistency")
}
