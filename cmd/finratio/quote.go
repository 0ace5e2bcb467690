package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newthinker/finratio/internal/core"
)

var quoteDate string

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "Print the current quote, or the close on --date",
	Long: `Quote asks the configured price provider for the current quote. With
--date it prints the closing price on or just before that day instead, the
same lookup the PE ratio uses.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteDate, "date", "", "trading day as YYYY-MM-DD")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	var day time.Time
	if quoteDate != "" {
		var err error
		if day, err = parseDay(quoteDate); err != nil {
			return err
		}
	}

	a, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	prices := a.Prices()
	if day.IsZero() {
		q, err := prices.Quote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(q)
	}

	price, err := prices.ClosingPrice(cmd.Context(), args[0], day)
	if err != nil {
		return err
	}
	fmt.Printf("%s close on %s (%s): %s\n", args[0], day.Format(time.DateOnly), prices.Name(), core.FormatFixed(price, 2))
	return nil
}

func parseDay(s string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, core.WrapError(core.ErrInvalidInput, fmt.Errorf("--date %q: want YYYY-MM-DD", s))
	}
	return day, nil
}
