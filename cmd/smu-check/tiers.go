package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/smu-check/internal/report"
	"github.com/pdiddy/smu-check/internal/tier"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Print the series resistor table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return report.WriteTiers(cmd.OutOrStdout(), tier.Default())
	},
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}
