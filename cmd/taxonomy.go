package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the domain taxonomy as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tax, err := loadTaxonomy(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tax.Domains())
	},
}
