/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for logger configuration, formats, event helpers and log file pruning.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggerConfigValidate tests config validation
func TestLoggerConfigValidate(t *testing.T) {
	require.NoError(t, DefaultLoggerConfig().Validate())

	cfg := DefaultLoggerConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLoggerConfig()
	cfg.Level = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLoggerConfig()
	cfg.OutputDir = t.TempDir()
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())

	_, err := newLogger(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

// TestCustomFormat tests event prefixes and shortened model ids
func TestCustomFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &LoggerConfig{Level: LogLevelInfo, Format: LogFormatCustom}
	logger, err := newLogger(cfg, &buf)
	require.NoError(t, err)
	defer logger.Close()

	logger.LogTraining("0123456789abcdef", 10, 2, 5, 1500*time.Millisecond, nil)
	assert.Equal(t,
		"INFO [FIT] Model trained committees=2 duration=1.5s model_id=01234567 rows=10 rules=5\n",
		buf.String())

	buf.Reset()
	logger.LogPrediction("short", 3, 4, time.Second, logrus.Fields{"out": "preds.csv"})
	assert.Equal(t,
		"INFO [PREDICT] Predictions written duration=1s model_id=short neighbors=4 out=preds.csv rows=3\n",
		buf.String())

	buf.Reset()
	logger.GetLogger().WithField("maxd", 2.123456).Warn("Snapshot loaded")
	assert.Equal(t, "WARNING [STORE] Snapshot loaded maxd=2.123\n", buf.String())

	buf.Reset()
	logger.GetLogger().WithField("source", "train").Info("Engine: Read 3 cases")
	assert.Equal(t, "INFO [ENGINE] Engine: Read 3 cases source=train\n", buf.String())
}

// TestJSONFormat tests structured output
func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&LoggerConfig{Level: LogLevelDebug, Format: LogFormatJSON}, &buf)
	require.NoError(t, err)

	logger.LogPrediction("abc", 2, 0, time.Millisecond, nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Predictions written", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["model_id"])
	assert.Equal(t, float64(2), entry["rows"])
}

// TestFileOutput tests the log file and pruning of old ones
func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"2000-01-01_00-00-00", "2000-01-02_00-00-00", "2000-01-03_00-00-00"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filePrefix+stamp+".log"), nil, 0644))
	}

	var buf bytes.Buffer
	cfg := &LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, OutputDir: dir, MaxFiles: 2}
	logger, err := newLogger(cfg, &buf)
	require.NoError(t, err)

	logger.GetLogger().Info("Model fitted")
	require.NoError(t, logger.Close())
	assert.Contains(t, buf.String(), "Model fitted")

	files, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filePrefix+"2000-01-03_00-00-00.log", filepath.Base(files[0]))

	current, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(current), "Model fitted")
}
