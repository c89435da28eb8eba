package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropml/yieldbench/experiment"
	"github.com/cropml/yieldbench/plot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the preprocessing sweep and print result tables",
	RunE:  runSweep,
}

func init() {
	f := runCmd.Flags()
	f.String("data", "", "path to the crop yield CSV")
	f.String("target", "", "target column name")
	f.Float64("test-size", 0, "holdout fraction")
	f.Int("seed", 0, "random seed")
	f.Int("folds", 0, "cross-validation folds")
	f.Float64("correlation-threshold", 0, "minimum |r| a feature needs against the target")
	f.StringSlice("scalings", nil, "scaling methods: none,standard,minmax")
	f.StringSlice("encodings", nil, "encoding methods: none,label,onehot")
	f.StringSlice("models", nil, "model families to evaluate")
	f.Bool("tuning", true, "tune families that define a search space")
	f.Bool("plot", false, "save a predicted-vs-actual scatter for the best model")
	f.String("plot-path", "", "plot output path")
	f.Bool("export", false, "export holdout and CV tables as CSV")
	f.String("export-dir", "", "CSV export directory")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the loaded
// configuration, so flags beat file and environment values.
func applyRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataPath, _ = f.GetString("data")
	}
	if f.Changed("target") {
		cfg.TargetColumn, _ = f.GetString("target")
	}
	if f.Changed("test-size") {
		cfg.TestSize, _ = f.GetFloat64("test-size")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt("seed")
	}
	if f.Changed("folds") {
		cfg.Folds, _ = f.GetInt("folds")
	}
	if f.Changed("correlation-threshold") {
		cfg.CorrelationThreshold, _ = f.GetFloat64("correlation-threshold")
	}
	if f.Changed("scalings") {
		cfg.Scalings, _ = f.GetStringSlice("scalings")
	}
	if f.Changed("encodings") {
		cfg.Encodings, _ = f.GetStringSlice("encodings")
	}
	if f.Changed("models") {
		cfg.Models, _ = f.GetStringSlice("models")
	}
	if f.Changed("tuning") {
		cfg.Tuning, _ = f.GetBool("tuning")
	}
	if f.Changed("plot") {
		cfg.Plot, _ = f.GetBool("plot")
	}
	if f.Changed("plot-path") {
		cfg.PlotPath, _ = f.GetString("plot-path")
	}
	if f.Changed("export") {
		cfg.Export, _ = f.GetBool("export")
	}
	if f.Changed("export-dir") {
		cfg.ExportDir, _ = f.GetString("export-dir")
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd)

	runner, err := experiment.NewRunner(cfg)
	if err != nil {
		return err
	}

	result, runErr := runner.Run()
	if result != nil {
		if err := experiment.NewReporter(os.Stdout).Write(result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if cfg.Export {
		if err := experiment.ExportCSV(result, cfg.ExportDir); err != nil {
			return err
		}
		fmt.Printf("Tables exported to %s\n", cfg.ExportDir)
	}

	if cfg.Plot {
		if rec, predicted, actual, ok := result.BestPrediction(); ok {
			title := fmt.Sprintf("%s (%s/%s) on holdout", rec.Family, rec.Scaling, rec.Encoding)
			if err := plot.PredictedVsActual(actual, predicted, title, cfg.PlotPath); err != nil {
				return err
			}
			fmt.Printf("Plot saved to %s\n", cfg.PlotPath)
		}
	}
	return nil
}
