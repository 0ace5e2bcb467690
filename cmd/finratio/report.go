package main

import (
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [symbol]",
	Short: "Print a company report as JSON",
	Long:  "Compute ratios, growth score, DuPont factors and DCF valuation for one company",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	rep, err := a.Reports().Build(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(rep)
}
