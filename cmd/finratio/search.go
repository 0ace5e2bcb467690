package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Find companies whose name starts with term",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results (0 for all)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	infos, err := a.Store().Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No matches")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tSECTOR")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Symbol, info.LongName, info.Sector)
	}
	return w.Flush()
}
