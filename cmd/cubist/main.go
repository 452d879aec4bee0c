/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for cubist-go. Trains Cubist rule-based regression
models from CSV data through the external engine, saves them as snapshots, scores new
data and prints the parsed rules, coefficients and attribute usage.
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kleascm/cubist-go/cmd/cubist/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cubist",
		Short: "cubist - rule-based regression models through the Cubist engine",
		Long: `cubist encodes tabular data for the Cubist rule-induction engine, runs it, and
parses the resulting model into committees, rules, coefficients and attribute usage.
Fitted models are stored as snapshots that later predict calls read back.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (console only when empty)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().String("metrics-out", "", "Write engine metrics in Prometheus text format to this file")

	rootCmd.PersistentFlags().String("train-binary", "cubist", "Engine model builder")
	rootCmd.PersistentFlags().String("predict-binary", "", "Engine case scorer")
	rootCmd.PersistentFlags().String("work-dir", "", "Parent directory for engine work files")
	rootCmd.PersistentFlags().Bool("keep-files", false, "Keep engine work files for inspection")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("metrics_out", rootCmd.PersistentFlags().Lookup("metrics-out"))
	viper.BindPFlag("engine.train_binary", rootCmd.PersistentFlags().Lookup("train-binary"))
	viper.BindPFlag("engine.predict_binary", rootCmd.PersistentFlags().Lookup("predict-binary"))
	viper.BindPFlag("engine.work_dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("engine.keep_files", rootCmd.PersistentFlags().Lookup("keep-files"))

	// train
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a model on a CSV file and save a snapshot",
		Long: `Read a header-first CSV file, split off the target (and optional case-weight)
column, train a model through the engine and write the fitted state as a snapshot.`,
		RunE: commands.RunTrain,
	}
	trainCmd.Flags().String("data", "", "Training CSV file (required)")
	trainCmd.Flags().String("target", "", "Target column (required)")
	trainCmd.Flags().String("weights", "", "Case-weight column")
	trainCmd.Flags().StringSlice("categorical", []string{}, "Columns read as categorical")
	trainCmd.Flags().String("out", "model.yaml", "Snapshot output path")
	trainCmd.Flags().Int("rules", 100, "Maximum rules per committee")
	trainCmd.Flags().Int("committees", 1, "Number of committees")
	trainCmd.Flags().Bool("unbiased", false, "Build unbiased rules")
	trainCmd.Flags().Float64("extrapolation", 1.0, "Allowed extrapolation, 0 to 1")
	trainCmd.Flags().Float64("sample", 0, "Fraction of rows used for building, 0 uses all")
	trainCmd.Flags().Int("seed", 0, "Engine seed, reduced mod 4095 (random when unset)")
	trainCmd.Flags().String("label", "outcome", "Target label in the names text")
	trainCmd.Flags().String("weight-name", "", "Case-weight name in the names text")
	trainCmd.Flags().String("composite", "yes", "Composite model mode (yes, no, auto)")
	trainCmd.Flags().Bool("verbose", false, "Log engine diagnostics at info level")
	trainCmd.MarkFlagRequired("data")
	trainCmd.MarkFlagRequired("target")

	for _, name := range []string{"rules", "committees", "unbiased", "extrapolation", "sample",
		"seed", "label", "weight-name", "composite", "verbose"} {
		viper.BindPFlag("model."+strings.ReplaceAll(name, "-", "_"), trainCmd.Flags().Lookup(name))
	}
	rootCmd.AddCommand(trainCmd)

	// predict
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a CSV file with a saved model",
		Long: `Load a snapshot, score every row of a CSV file and write one prediction per row.
When --target names a column present in the file, the R² score is logged as well.`,
		RunE: commands.RunPredict,
	}
	predictCmd.Flags().String("model", "model.yaml", "Snapshot path")
	predictCmd.Flags().String("data", "", "CSV file to score (required)")
	predictCmd.Flags().String("target", "", "Observed target column used for scoring")
	predictCmd.Flags().Int("neighbors", 0, "Instances used to correct predictions, 0 to 9")
	predictCmd.Flags().String("out", "", "Prediction CSV output path (stdout when empty)")
	predictCmd.MarkFlagRequired("data")
	viper.BindPFlag("model.neighbors", predictCmd.Flags().Lookup("neighbors"))
	rootCmd.AddCommand(predictCmd)

	// inspect
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the rules, coefficients and usage of a saved model",
		RunE:  commands.RunInspect,
	}
	inspectCmd.Flags().String("model", "model.yaml", "Snapshot path")
	inspectCmd.Flags().String("format", "text", "Output format (text, yaml)")
	rootCmd.AddCommand(inspectCmd)

	// check
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate configuration, engine binaries and the work directory before training.
Useful in CI before running train or predict.`,
		RunE: commands.PerformSelfCheck,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
