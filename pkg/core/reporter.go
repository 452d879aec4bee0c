/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter hooks for estimator events. Supports logging and Prometheus
export of fitted model shape and prediction volume.
*/

package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// Reporter is notified after successful fits and predictions
type Reporter interface {
	// OnFit is called once a new fitted state is in place.
	OnFit(state *FittedState)
	// OnPredict is called after a prediction call returns.
	OnPredict(modelID string, rows int, elapsed time.Duration)
}

// LoggerReporter logs estimator events
type LoggerReporter struct {
	logger logrus.FieldLogger
}

// NewLoggerReporter creates a new LoggerReporter
func NewLoggerReporter(logger logrus.FieldLogger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnFit logs the model shape
func (r *LoggerReporter) OnFit(state *FittedState) {
	r.logger.WithFields(logrus.Fields{
		"model_id":   state.ID,
		"committees": len(state.Description.Committees),
		"rules":      state.Description.RuleCount(),
		"used":       len(state.Variables.Used),
		"variables":  len(state.Variables.All),
	}).Info("Model ready")
}

// OnPredict logs the prediction volume
func (r *LoggerReporter) OnPredict(modelID string, rows int, elapsed time.Duration) {
	r.logger.WithFields(logrus.Fields{
		"model_id": modelID,
		"rows":     rows,
		"elapsed":  elapsed,
	}).Debug("Predictions returned")
}

var (
	modelRules = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cubist",
		Subsystem: "model",
		Name:      "rules",
		Help:      "Rules in the most recently fitted model",
	})

	modelCommittees = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cubist",
		Subsystem: "model",
		Name:      "committees",
		Help:      "Committees in the most recently fitted model",
	})

	predictedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubist",
		Subsystem: "model",
		Name:      "predicted_rows_total",
		Help:      "Rows scored by fitted models",
	})
)

// PrometheusReporter exports model shape and prediction volume
type PrometheusReporter struct{}

// NewPrometheusReporter creates a new PrometheusReporter
func NewPrometheusReporter() *PrometheusReporter {
	return &PrometheusReporter{}
}

// OnFit records the model shape
func (r *PrometheusReporter) OnFit(state *FittedState) {
	modelRules.Set(float64(state.Description.RuleCount()))
	modelCommittees.Set(float64(len(state.Description.Committees)))
}

// OnPredict counts scored rows
func (r *PrometheusReporter) OnPredict(modelID string, rows int, elapsed time.Duration) {
	predictedRows.Add(float64(rows))
}
