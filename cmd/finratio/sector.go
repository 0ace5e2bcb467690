package main

import (
	"github.com/spf13/cobra"
)

var sectorCmd = &cobra.Command{
	Use:   "sector [symbol]",
	Short: "Print the sector averages for a company's sector",
	Args:  cobra.ExactArgs(1),
	RunE:  runSector,
}

func init() {
	rootCmd.AddCommand(sectorCmd)
}

func runSector(cmd *cobra.Command, args []string) error {
	a, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	rep, err := a.Sectors().Aggregate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"symbol":  rep.Symbol,
		"sector":  rep.Sector,
		"peers":   rep.Peers,
		"skipped": rep.Skipped,
		"ratios":  rep,
	})
}
