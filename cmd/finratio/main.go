package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/finratio/internal/app"
	"github.com/newthinker/finratio/internal/config"
	"github.com/newthinker/finratio/internal/logger"
	"github.com/newthinker/finratio/internal/metrics"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "finratio",
	Short: "finratio - company fundamentals and valuation",
	Long: `finratio computes financial ratios with growth rates, a composite growth
score, a DuPont decomposition and a DCF valuation from stored company
statements, and benchmarks companies against their sector.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv loads path into the environment. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadConfig reads the config file, or the defaults when none is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	return logger.NewWithLevel(debug || cfg.Log.Development, level)
}

// setup loads config, logger and the wired application.
func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}

	var opts []app.Option
	if cfg.Metrics.Enabled {
		opts = append(opts, app.WithMetrics(metrics.NewRegistry()))
	}
	a, err := app.New(ctx, cfg, log, opts...)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("initializing: %w", err)
	}
	return a, log, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
