package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropml/yieldbench/experiment"
	"github.com/cropml/yieldbench/pkg/errors"
	"github.com/cropml/yieldbench/pkg/log"
)

var (
	// Global flags, wired to config during initialization.
	cfgFile  string
	logLevel string

	// Loaded configuration shared by all commands.
	cfg *experiment.Config
)

var rootCmd = &cobra.Command{
	Use:   "yieldbench",
	Short: "Benchmark regression families across preprocessing variants",
	Long: `yieldbench sweeps a scaling x encoding grid over a crop yield
dataset, fits six regression families in every cell and reports holdout
and cross-validated scores side by side.`,
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./yieldbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func initConfig() {
	c, err := experiment.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	cfg = c

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	log.SetupLogger(cfg.LogLevel)

	// Library warnings (imputation repairs, convergence caps) land in
	// the structured log instead of the stdlib logger.
	errors.SetWarningHandler(func(w error) {
		slog.Warn("model warning", log.ErrAttr(w))
	})
}
