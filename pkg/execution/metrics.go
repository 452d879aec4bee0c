/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus instrumentation for engine calls. Wraps any engine and records
call counts and latencies per operation and outcome.
*/

package execution

import (
	"context"
	"errors"
	"time"

	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// engineCalls counts engine calls.
	// Labels: engine, op (train, predict), status (ok, engine_error, error)
	engineCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubist",
		Subsystem: "engine",
		Name:      "calls_total",
		Help:      "Total engine calls by operation and outcome",
	}, []string{"engine", "op", "status"})

	// engineLatency measures engine call wall time.
	// Labels: engine, op
	engineLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cubist",
		Subsystem: "engine",
		Name:      "call_duration_seconds",
		Help:      "Engine call latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"engine", "op"})
)

// InstrumentedEngine records metrics around another engine
type InstrumentedEngine struct {
	next interfaces.Engine
}

// Instrument wraps an engine with call metrics
func Instrument(engine interfaces.Engine) *InstrumentedEngine {
	return &InstrumentedEngine{next: engine}
}

func (e *InstrumentedEngine) Name() string { return e.next.Name() }

func (e *InstrumentedEngine) Train(ctx context.Context, req *interfaces.TrainRequest) (*interfaces.TrainResult, error) {
	start := time.Now()
	res, err := e.next.Train(ctx, req)
	e.observe("train", start, err)
	return res, err
}

func (e *InstrumentedEngine) Predict(ctx context.Context, req *interfaces.PredictRequest) (*interfaces.PredictResult, error) {
	start := time.Now()
	res, err := e.next.Predict(ctx, req)
	e.observe("predict", start, err)
	return res, err
}

func (e *InstrumentedEngine) observe(op string, start time.Time, err error) {
	engineLatency.WithLabelValues(e.next.Name(), op).Observe(time.Since(start).Seconds())
	engineCalls.WithLabelValues(e.next.Name(), op, callStatus(err)).Inc()
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interfaces.ErrEngine):
		return "engine_error"
	default:
		return "error"
	}
}
