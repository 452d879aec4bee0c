/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: executor_test.go
Description: Tests for the process engine, the builder arguments and the engine metrics.
*/

package execution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrainArgs tests the mapping of scalar controls to builder options
func TestTrainArgs(t *testing.T) {
	req := &interfaces.TrainRequest{
		Unbiased:      true,
		Composite:     interfaces.CompositeYes,
		Neighbors:     1,
		Committees:    5,
		Sample:        0.25,
		Seed:          17,
		Rules:         100,
		Extrapolation: 0.5,
	}
	assert.Equal(t, []string{
		"-f", "stem", "-u", "-i", "-n", "1", "-C", "5", "-S", "25",
		"-I", "17", "-r", "100", "-e", "50",
	}, TrainArgs("stem", req))

	req = &interfaces.TrainRequest{Composite: interfaces.CompositeNo, Neighbors: 1, Committees: 1, Rules: 10, Extrapolation: 1}
	assert.Equal(t, []string{"-f", "m", "-I", "0", "-r", "10", "-e", "100"}, TrainArgs("m", req))

	req.Composite = interfaces.CompositeAuto
	assert.Equal(t, []string{"-f", "m", "-a", "-n", "1", "-I", "0", "-r", "10", "-e", "100"}, TrainArgs("m", req))
}

// TestParsePredictions tests number extraction from scorer output
func TestParsePredictions(t *testing.T) {
	out := "Cubist predictions\n\ncase 1   2.5\ncase 2   -1e-3\n   \nTime: 0.0 secs\n3\n"
	assert.Equal(t, []float64{2.5, -0.001, 3}, ParsePredictions(out))
	assert.Empty(t, ParsePredictions(""))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// TestProcessEngine tests a full train and predict cycle against stand-in binaries
func TestProcessEngine(t *testing.T) {
	train := writeScript(t, "echo \"Cubist [Release 2.07]\"\nprintf 'id=\"stub\"\\n' > \"$2.model\"\n")
	predict := writeScript(t, "test -f \"$2.data\" && echo \"with training data\"\nprintf 'case 1 2.5\\ncase 2 3.5\\n'\n")

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	workDir := t.TempDir()
	engine := NewProcessEngine(ProcessConfig{
		TrainBinary:   train,
		PredictBinary: predict,
		WorkDir:       workDir,
	}, logger)
	assert.Equal(t, "process", engine.Name())

	ctx := context.Background()
	res, err := engine.Train(ctx, &interfaces.TrainRequest{Names: "y.\n", Data: "1\n", Rules: 1, Committees: 1})
	require.NoError(t, err)
	assert.Equal(t, "id=\"stub\"\n", res.Model)
	assert.Contains(t, res.Diagnostics, "Cubist [Release 2.07]")
	assert.NotEmpty(t, hook.AllEntries())

	pred, err := engine.Predict(ctx, &interfaces.PredictRequest{
		Cases: "?\n?\n", Names: "y.\n", Model: res.Model, TrainingData: "1\n", Rows: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3.5}, pred.Predictions)

	_, err = engine.Predict(ctx, &interfaces.PredictRequest{Cases: "?\n", Names: "y.\n", Model: res.Model, Rows: 1})
	assert.ErrorIs(t, err, interfaces.ErrEngine)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestProcessEngineFailures tests exit codes and missing outputs
func TestProcessEngineFailures(t *testing.T) {
	failing := writeScript(t, "echo \"*** Error limit exceeded\"\nexit 3\n")
	silent := writeScript(t, "echo done\n")
	logger, _ := test.NewNullLogger()
	ctx := context.Background()
	req := &interfaces.TrainRequest{Names: "y.\n", Data: "1\n"}

	_, err := NewProcessEngine(ProcessConfig{TrainBinary: failing, WorkDir: t.TempDir()}, logger).Train(ctx, req)
	require.ErrorIs(t, err, interfaces.ErrEngine)
	var engineErr *interfaces.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Contains(t, engineErr.Diagnostics, "Error limit exceeded")
	assert.Contains(t, err.Error(), "exited with code 3")

	_, err = NewProcessEngine(ProcessConfig{TrainBinary: silent, WorkDir: t.TempDir()}, logger).Train(ctx, req)
	assert.ErrorIs(t, err, interfaces.ErrEngine)

	_, err = NewProcessEngine(ProcessConfig{TrainBinary: silent}, logger).Predict(ctx, &interfaces.PredictRequest{})
	assert.ErrorIs(t, err, interfaces.ErrEngine)
}

// TestKeepFiles tests that the work directory survives when asked
func TestKeepFiles(t *testing.T) {
	train := writeScript(t, "printf 'id=\"stub\"\\n' > \"$2.model\"\n")
	logger, hook := test.NewNullLogger()
	workDir := t.TempDir()

	engine := NewProcessEngine(ProcessConfig{TrainBinary: train, WorkDir: workDir, KeepFiles: true}, logger)
	_, err := engine.Train(context.Background(), &interfaces.TrainRequest{Names: "y.\n", Data: "1\n"})
	require.NoError(t, err)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Keeping engine work directory", hook.LastEntry().Message)
}

type stubEngine struct {
	name string
	err  error
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Train(ctx context.Context, req *interfaces.TrainRequest) (*interfaces.TrainResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.TrainResult{Model: "id=\"stub\"\n"}, nil
}

func (s *stubEngine) Predict(ctx context.Context, req *interfaces.PredictRequest) (*interfaces.PredictResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.PredictResult{Predictions: make([]float64, req.Rows)}, nil
}

// TestInstrumentedEngine tests call counting per outcome
func TestInstrumentedEngine(t *testing.T) {
	ctx := context.Background()

	ok := Instrument(&stubEngine{name: "stub-ok"})
	assert.Equal(t, "stub-ok", ok.Name())
	_, err := ok.Train(ctx, &interfaces.TrainRequest{})
	require.NoError(t, err)
	_, err = ok.Predict(ctx, &interfaces.PredictRequest{Rows: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(engineCalls.WithLabelValues("stub-ok", "train", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(engineCalls.WithLabelValues("stub-ok", "predict", "ok")))

	failing := Instrument(&stubEngine{name: "stub-fail", err: &interfaces.EngineError{Diagnostics: "boom"}})
	_, err = failing.Train(ctx, &interfaces.TrainRequest{})
	assert.ErrorIs(t, err, interfaces.ErrEngine)
	assert.Equal(t, 1.0, testutil.ToFloat64(engineCalls.WithLabelValues("stub-fail", "train", "engine_error")))
}

// TestCallStatus tests outcome labels
func TestCallStatus(t *testing.T) {
	assert.Equal(t, "ok", callStatus(nil))
	assert.Equal(t, "engine_error", callStatus(&interfaces.EngineError{}))
	assert.Equal(t, "error", callStatus(context.Canceled))
}
