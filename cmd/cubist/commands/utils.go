/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared helpers for the cubist commands: configuration loading, logging
setup, estimator and engine construction from configuration, and CSV table loading.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/kleascm/cubist-go/pkg/core"
	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/execution"
	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/kleascm/cubist-go/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("CUBIST")
	viper.AutomaticEnv()
	return nil
}

// LoggerConfigFromViper builds the logger configuration from the loaded settings
func LoggerConfigFromViper() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if v := viper.GetString("log_level"); v != "" {
		cfg.Level = logging.LogLevel(v)
	}
	if v := viper.GetString("log_format"); v != "" {
		cfg.Format = logging.LogFormat(v)
	}
	cfg.OutputDir = viper.GetString("log_dir")
	if v := viper.GetInt("log_max_files"); v > 0 {
		cfg.MaxFiles = v
	}
	cfg.Colors = cfg.Format == logging.LogFormatCustom
	return cfg
}

// SetupLogging loads configuration and creates the command logger
func SetupLogging() (*logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.NewLogger(LoggerConfigFromViper())
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// ParamsFromViper builds estimator parameters from flags, config file and environment
func ParamsFromViper() core.Params {
	p := core.DefaultParams()
	if viper.IsSet("model.rules") {
		p.Rules = viper.GetInt("model.rules")
	}
	if viper.IsSet("model.committees") {
		p.Committees = viper.GetInt("model.committees")
	}
	if viper.IsSet("model.extrapolation") {
		p.Extrapolation = viper.GetFloat64("model.extrapolation")
	}
	if viper.IsSet("model.label") {
		p.TargetLabel = viper.GetString("model.label")
	}
	if viper.IsSet("model.composite") {
		p.Composite = interfaces.Composite(viper.GetString("model.composite"))
	}
	p.Unbiased = viper.GetBool("model.unbiased")
	p.Sample = viper.GetFloat64("model.sample")
	p.WeightName = viper.GetString("model.weight_name")
	p.Neighbors = viper.GetInt("model.neighbors")
	p.Verbose = viper.GetBool("model.verbose")
	if viper.IsSet("model.seed") {
		seed := viper.GetInt("model.seed")
		p.Seed = &seed
	}
	return p
}

// EngineConfigFromViper builds the process engine configuration
func EngineConfigFromViper() execution.ProcessConfig {
	return execution.ProcessConfig{
		TrainBinary:   viper.GetString("engine.train_binary"),
		PredictBinary: viper.GetString("engine.predict_binary"),
		WorkDir:       viper.GetString("engine.work_dir"),
		KeepFiles:     viper.GetBool("engine.keep_files"),
		Env:           viper.GetStringSlice("engine.env"),
	}
}

// NewEstimator wires the instrumented process engine into an estimator
func NewEstimator(logger *logging.Logger, params core.Params) (*core.Estimator, error) {
	log := logger.GetLogger()
	engine := execution.Instrument(execution.NewProcessEngine(EngineConfigFromViper(), log))
	return core.NewEstimator(engine, params,
		core.WithLogger(log),
		core.WithReporter(core.NewLoggerReporter(log)),
		core.WithReporter(core.NewPrometheusReporter()),
	)
}

// WriteMetrics writes the default registry to the configured textfile, if any
func WriteMetrics() error {
	path := viper.GetString("metrics_out")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// LoadTable reads a CSV file and splits off the named target and weight columns.
// Empty names leave the corresponding slice nil.
func LoadTable(path, target, weights string, categorical []string) (*dataset.Table, []float64, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	table, err := dataset.ReadCSV(f, dataset.CSVOptions{Categorical: categorical})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	y, err := floatColumn(table, target)
	if err != nil {
		return nil, nil, nil, err
	}
	w, err := floatColumn(table, weights)
	if err != nil {
		return nil, nil, nil, err
	}
	return table.Drop(target, weights), y, w, nil
}

func floatColumn(table *dataset.Table, name string) ([]float64, error) {
	if name == "" {
		return nil, nil
	}
	col, ok := table.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col.Floats()
}
