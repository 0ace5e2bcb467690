package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/finratio/internal/storage/archive"
	"github.com/newthinker/finratio/internal/storage/statement"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Load JSON documents into the configured store",
	Long: `Import reads <collection>/<symbol>.json documents from dir (collections
balanceSheet_data, incomeStatement_data, cashflow_data, beta_values and
basic_information) and writes them to the configured storage backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	src, err := archive.NewLocalFS(args[0])
	if err != nil {
		return err
	}

	n, err := statement.Import(cmd.Context(), src, a.Store())
	if err != nil {
		return fmt.Errorf("import stopped after %d documents: %w", n, err)
	}
	log.Info("import finished", zap.String("dir", args[0]), zap.Int("documents", n))
	fmt.Printf("Imported %d documents\n", n)
	return nil
}
