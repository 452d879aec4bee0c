/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: executor.go
Description: Process engine for cubist-go. Runs the external Cubist binaries over a
private work directory: the names/data texts are written as <stem>.names and <stem>.data,
the model comes back in <stem>.model and the console output is the diagnostics stream.
*/

package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// ProcessConfig configures the external binaries
type ProcessConfig struct {
	TrainBinary   string   // Model builder, e.g. "cubist"
	PredictBinary string   // Case scorer reading <stem>.cases
	WorkDir       string   // Parent of the per-call directories, os.TempDir() when empty
	KeepFiles     bool     // Leave the per-call directory behind for inspection
	Env           []string // Extra environment for both binaries
}

// ProcessEngine implements interfaces.Engine over the external binaries
type ProcessEngine struct {
	config ProcessConfig
	logger logrus.FieldLogger
}

// NewProcessEngine creates a process engine
func NewProcessEngine(config ProcessConfig, logger logrus.FieldLogger) *ProcessEngine {
	if config.TrainBinary == "" {
		config.TrainBinary = "cubist"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProcessEngine{config: config, logger: logger}
}

// Name identifies the engine in logs and metrics
func (e *ProcessEngine) Name() string { return "process" }

// Train writes the names and data files, runs the builder and reads the model back
func (e *ProcessEngine) Train(ctx context.Context, req *interfaces.TrainRequest) (*interfaces.TrainResult, error) {
	dir, stem, cleanup, err := e.workspace()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := writeFiles(dir, stem, map[string]string{
		".names": req.Names,
		".data":  req.Data,
	}); err != nil {
		return nil, err
	}

	start := time.Now()
	output, runErr := e.run(ctx, dir, e.config.TrainBinary, TrainArgs(stem, req))
	result := &interfaces.TrainResult{Diagnostics: output, Duration: time.Since(start)}
	if runErr != nil {
		return nil, &interfaces.EngineError{Diagnostics: output, Err: runErr}
	}

	modelText, err := os.ReadFile(filepath.Join(dir, stem+".model"))
	if err != nil {
		return nil, &interfaces.EngineError{Diagnostics: output, Err: fmt.Errorf("engine wrote no model: %w", err)}
	}
	result.Model = string(modelText)

	e.logger.WithFields(logrus.Fields{
		"binary":   e.config.TrainBinary,
		"duration": result.Duration,
		"model_kb": len(modelText) / 1024,
	}).Debug("Engine training run finished")
	return result, nil
}

// Predict writes the model and cases, runs the scorer and collects one
// prediction per case
func (e *ProcessEngine) Predict(ctx context.Context, req *interfaces.PredictRequest) (*interfaces.PredictResult, error) {
	if e.config.PredictBinary == "" {
		return nil, &interfaces.EngineError{Err: errors.New("no predict binary configured")}
	}
	dir, stem, cleanup, err := e.workspace()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	files := map[string]string{
		".names": req.Names,
		".model": req.Model,
		".cases": req.Cases,
	}
	if req.TrainingData != "" {
		files[".data"] = req.TrainingData
	}
	if err := writeFiles(dir, stem, files); err != nil {
		return nil, err
	}

	start := time.Now()
	output, runErr := e.run(ctx, dir, e.config.PredictBinary, []string{"-f", stem})
	if runErr != nil {
		return nil, &interfaces.EngineError{Diagnostics: output, Err: runErr}
	}

	source := output
	predFile := filepath.Join(dir, stem+".pred")
	if raw, err := os.ReadFile(predFile); err == nil {
		source = string(raw)
		output = ""
	}
	preds := ParsePredictions(source)
	if len(preds) != req.Rows {
		return nil, &interfaces.EngineError{
			Diagnostics: output,
			Err:         fmt.Errorf("engine returned %d predictions for %d cases", len(preds), req.Rows),
		}
	}
	return &interfaces.PredictResult{Predictions: preds, Diagnostics: output, Duration: time.Since(start)}, nil
}

// TrainArgs maps the scalar controls onto the builder's command-line options
func TrainArgs(stem string, req *interfaces.TrainRequest) []string {
	args := []string{"-f", stem}
	if req.Unbiased {
		args = append(args, "-u")
	}
	switch req.Composite {
	case interfaces.CompositeYes:
		args = append(args, "-i")
	case interfaces.CompositeAuto:
		args = append(args, "-a")
	}
	if req.Composite != interfaces.CompositeNo && req.Neighbors > 0 {
		args = append(args, "-n", strconv.Itoa(req.Neighbors))
	}
	if req.Committees > 1 {
		args = append(args, "-C", strconv.Itoa(req.Committees))
	}
	if req.Sample > 0 {
		args = append(args, "-S", strconv.FormatFloat(req.Sample*100, 'f', -1, 64))
	}
	args = append(args,
		"-I", strconv.Itoa(req.Seed),
		"-r", strconv.Itoa(req.Rules),
		"-e", strconv.FormatFloat(req.Extrapolation*100, 'f', -1, 64),
	)
	return args
}

// ParsePredictions takes the last field of every line that ends in a number
func ParsePredictions(output string) []float64 {
	var preds []float64
	for _, l := range strings.Split(output, "\n") {
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		preds = append(preds, v)
	}
	return preds
}

// workspace creates the per-call directory and a unique file stem
func (e *ProcessEngine) workspace() (string, string, func(), error) {
	dir, err := os.MkdirTemp(e.config.WorkDir, "cubist-")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	stem := "model-" + uuid.NewString()[:8]
	cleanup := func() {
		if e.config.KeepFiles {
			e.logger.WithField("dir", dir).Info("Keeping engine work directory")
			return
		}
		os.RemoveAll(dir)
	}
	return dir, stem, cleanup, nil
}

func writeFiles(dir, stem string, files map[string]string) error {
	for ext, text := range files {
		if err := os.WriteFile(filepath.Join(dir, stem+ext), []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s file: %w", ext, err)
		}
	}
	return nil
}

// run executes binary in dir and returns stdout followed by stderr
func (e *ProcessEngine) run(ctx context.Context, dir, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.config.Env...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	e.logger.WithFields(logrus.Fields{
		"binary": binary,
		"args":   strings.Join(args, " "),
	}).Debug("Starting engine process")

	err := cmd.Run()
	output := outBuf.String() + errBuf.String()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return output, fmt.Errorf("%s exited with code %d", binary, exitErr.ExitCode())
	}
	if err != nil {
		return output, fmt.Errorf("failed to run %s: %w", binary, err)
	}
	return output, nil
}
