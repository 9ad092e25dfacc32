package main

import (
	"encoding/json"
	"fmt"

	"github.com/okian/intervue/pkg/logger"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress <userId>",
	Short: "Print a user's stored progress as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy(cfg)
		if err != nil {
			return err
		}
		gw, err := openGateway(cmd.Context(), cfg, tax, logger.Get())
		if err != nil {
			return err
		}
		defer func() { _ = gw.Close() }()

		doc, err := gw.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("no progress for user %q", args[0])
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}
