/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Console formatters for cubist-go. CustomFormatter prints a compact line
with optional colours; ModelFormatter adds an event prefix for fit, prediction and engine
messages and shortens model ids.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter prints one readable line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, "", f.formatValue), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, prefix string, value func(string, interface{}) string) []byte {
	var output strings.Builder

	if f.Timestamp {
		f.paint(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"), "%s ")
	}

	level := strings.ToUpper(entry.Level.String())
	f.paint(&output, f.getLevelColor(entry.Level), level, "%s ")

	if prefix != "" {
		f.paint(&output, 35, prefix, "[%s] ")
	}

	if f.Caller && entry.HasCaller() {
		f.paint(&output, 33, fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), "[%s] ")
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data, value))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

// paint writes text through layout, wrapped in an ANSI colour when enabled
func (f *CustomFormatter) paint(b *strings.Builder, color int, text, layout string) {
	if f.Colors {
		text = fmt.Sprintf("\033[%dm%s\033[0m", color, text)
	}
	fmt.Fprintf(b, layout, text)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35 // Magenta
	default:
		return 37
	}
}

// formatFields renders fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields, value func(string, interface{}) string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v := value(key, fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, v))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(_ string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > 50 {
			return v[:50] + "..."
		}
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ModelFormatter tags fit, prediction and engine messages
type ModelFormatter struct {
	CustomFormatter
}

// Format formats a log entry with an event prefix
func (f *ModelFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, f.prefix(entry.Message), f.formatModelValue), nil
}

func (f *ModelFormatter) prefix(message string) string {
	switch {
	case strings.HasPrefix(message, "Engine"):
		return "ENGINE"
	case strings.Contains(message, "trained"), strings.Contains(message, "fitted"):
		return "FIT"
	case strings.Contains(message, "Prediction"), strings.Contains(message, "Predictions"):
		return "PREDICT"
	case strings.Contains(message, "Snapshot"):
		return "STORE"
	default:
		return ""
	}
}

func (f *ModelFormatter) formatModelValue(key string, value interface{}) string {
	switch key {
	case "model_id":
		if s, ok := value.(string); ok && len(s) > 8 {
			return s[:8]
		}
	case "maxd":
		if v, ok := value.(float64); ok {
			return fmt.Sprintf("%.4g", v)
		}
	}
	return f.formatValue(key, value)
}
