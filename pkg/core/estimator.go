/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: estimator.go
Description: Cubist regression estimator. Fit encodes the training table, drives the
engine, repairs and parses what comes back and keeps the fitted state; Predict derives
a per-call model text and scores new cases against that state.
*/

package core

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/kleascm/cubist-go/pkg/model"
	"github.com/kleascm/cubist-go/pkg/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ErrorLimitMarker in the diagnostics means the engine gave up on the data
const ErrorLimitMarker = "Error limit exceeded"

// trainingNeighbors is always used for the engine run so the model carries maxd
const trainingNeighbors = 1

// FittedState is everything a fitted estimator keeps between calls
type FittedState struct {
	ID           string
	CreatedAt    time.Time
	Seed         int
	Schema       *encoding.Schema
	Names        storage.Blob // Compressed names text
	TrainingData storage.Blob // Compressed training data text
	Model        string       // Model text in its instances-off form
	MaxDistance  model.NullFloat
	Description  *model.Description
	Usage        []model.UsageStat
	Variables    model.Summary
	Splits       []model.Split
	Diagnostics  string // Repaired training diagnostics
}

// Estimator fits and applies Cubist models through an engine
type Estimator struct {
	params    Params
	engine    interfaces.Engine
	logger    logrus.FieldLogger
	reporters []Reporter

	rngMu sync.Mutex
	rng   *rand.Rand

	fitMu sync.Mutex
	state atomic.Pointer[FittedState]
}

// Option configures an estimator
type Option func(*Estimator)

// WithLogger sets the estimator logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Estimator) { e.logger = logger }
}

// WithRand sets the source seeds are drawn from when Params.Seed is nil
func WithRand(rng *rand.Rand) Option {
	return func(e *Estimator) { e.rng = rng }
}

// WithReporter adds a reporter notified after fits and predictions
func WithReporter(r Reporter) Option {
	return func(e *Estimator) { e.reporters = append(e.reporters, r) }
}

// NewEstimator validates params and creates an unfitted estimator
func NewEstimator(engine interfaces.Engine, params Params, opts ...Option) (*Estimator, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := &Estimator{params: params, engine: engine}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e, nil
}

// Params returns the estimator configuration
func (e *Estimator) Params() Params { return e.params }

// IsFitted reports whether Fit or Restore has completed
func (e *Estimator) IsFitted() bool { return e.state.Load() != nil }

// State returns the fitted state or a ModelStateError
func (e *Estimator) State() (*FittedState, error) {
	st := e.state.Load()
	if st == nil {
		return nil, &interfaces.ModelStateError{Reason: "estimator is not fitted"}
	}
	return st, nil
}

// seed picks the engine seed, reduced into the engine's range
func (e *Estimator) seed() int {
	if e.params.Seed != nil {
		s := *e.params.Seed % SeedModulus
		if s < 0 {
			s += SeedModulus
		}
		return s
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(SeedModulus)
}

// Fit trains a model on features, target and optional case weights. A failed Fit
// leaves any earlier fitted state in place.
func (e *Estimator) Fit(ctx context.Context, features *dataset.Table, target []float64, weights []float64) error {
	e.fitMu.Lock()
	defer e.fitMu.Unlock()

	start := time.Now()
	seed := e.seed()
	logger := e.logger.WithFields(logrus.Fields{
		"engine": e.engine.Name(),
		"rows":   features.Rows(),
		"seed":   seed,
	})

	schema, err := encoding.BuildSchema(features, encoding.SchemaOptions{
		Label:      e.params.TargetLabel,
		Weighted:   weights != nil,
		WeightName: e.params.WeightName,
	})
	if err != nil {
		return err
	}
	names := schema.Names(
		"Generated by cubist-go",
		fmt.Sprintf("seed: %d", seed),
	)
	data, err := encoding.EncodeData(schema, features, target, weights)
	if err != nil {
		return err
	}

	logger.Debug("Starting engine training")
	res, err := e.engine.Train(ctx, &interfaces.TrainRequest{
		Names:         names,
		Data:          data,
		Unbiased:      e.params.Unbiased,
		Composite:     e.params.Composite,
		Neighbors:     trainingNeighbors,
		Committees:    e.params.Committees,
		Sample:        e.params.Sample,
		Seed:          seed,
		Rules:         e.params.Rules,
		Extrapolation: e.params.Extrapolation,
	})
	if err != nil {
		return fmt.Errorf("engine training failed: %w", err)
	}
	if strings.Contains(res.Diagnostics, ErrorLimitMarker) {
		return &interfaces.EngineError{Diagnostics: res.Diagnostics, Err: fmt.Errorf("%s", ErrorLimitMarker)}
	}

	modelText, diagnostics := res.Model, res.Diagnostics
	if model.NeedsRepair(names) {
		diagnostics = model.RepairDiagnostics(diagnostics)
		if modelText, err = model.RepairModel(modelText); err != nil {
			return err
		}
	}
	e.logDiagnostics(logger, diagnostics)

	variables := schema.FeatureNames()
	var (
		desc  *model.Description
		usage []model.UsageStat
		g     errgroup.Group
	)
	g.Go(func() error {
		var err error
		desc, err = model.Parse(modelText, variables)
		return err
	})
	g.Go(func() error {
		var err error
		usage, err = model.ParseUsage(diagnostics, variables)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stored, maxd, err := model.Normalize(modelText)
	if err != nil {
		return err
	}

	namesBlob, err := storage.Compress(names)
	if err != nil {
		return err
	}
	dataBlob, err := storage.Compress(data)
	if err != nil {
		return err
	}

	state := &FittedState{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Seed:         seed,
		Schema:       schema,
		Names:        namesBlob,
		TrainingData: dataBlob,
		Model:        stored,
		MaxDistance:  maxd,
		Description:  desc,
		Usage:        usage,
		Variables:    desc.Summary(),
		Splits:       desc.Splits(features),
		Diagnostics:  diagnostics,
	}
	e.state.Store(state)
	for _, r := range e.reporters {
		r.OnFit(state)
	}

	logger.WithFields(logrus.Fields{
		"model_id":   state.ID,
		"committees": len(desc.Committees),
		"rules":      desc.RuleCount(),
		"maxd":       maxd.String(),
		"duration":   time.Since(start),
	}).Info("Model fitted")
	return nil
}

// logDiagnostics writes the engine output line by line, at info level when
// Params.Verbose is set and at debug level otherwise
func (e *Estimator) logDiagnostics(logger logrus.FieldLogger, diagnostics string) {
	level := logrus.DebugLevel
	if e.params.Verbose {
		level = logrus.InfoLevel
	}
	entry := logger.WithField("source", "train")
	for _, line := range strings.Split(diagnostics, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry.Log(level, "Engine: "+strings.TrimRight(line, "\r"))
	}
}

// Predict scores the cases in features with the fitted model, applying instance
// correction with Params.Neighbors when it is non-zero
func (e *Estimator) Predict(ctx context.Context, features *dataset.Table) ([]float64, error) {
	return e.PredictWithNeighbors(ctx, features, e.params.Neighbors)
}

// PredictWithNeighbors is Predict with an explicit neighbor count
func (e *Estimator) PredictWithNeighbors(ctx context.Context, features *dataset.Table, neighbors int) ([]float64, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	cases, err := encoding.EncodeCases(st.Schema, features)
	if err != nil {
		return nil, err
	}
	modelText, err := model.Toggle(st.Model, neighbors, st.MaxDistance)
	if err != nil {
		return nil, err
	}
	names, err := st.Names.Text()
	if err != nil {
		return nil, err
	}
	var training string
	if neighbors > 0 {
		if training, err = st.TrainingData.Text(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	res, err := e.engine.Predict(ctx, &interfaces.PredictRequest{
		Cases:        cases,
		Names:        names,
		TrainingData: training,
		Model:        modelText,
		Rows:         features.Rows(),
	})
	if err != nil {
		return nil, fmt.Errorf("engine prediction failed: %w", err)
	}
	if res.Diagnostics != "" {
		e.logger.WithField("model_id", st.ID).Warn(strings.TrimSpace(res.Diagnostics))
	}
	if len(res.Predictions) != features.Rows() {
		return nil, &interfaces.EngineError{
			Diagnostics: res.Diagnostics,
			Err:         fmt.Errorf("engine returned %d predictions for %d cases", len(res.Predictions), features.Rows()),
		}
	}
	for _, r := range e.reporters {
		r.OnPredict(st.ID, features.Rows(), time.Since(start))
	}
	return res.Predictions, nil
}

// Score returns the coefficient of determination of the predictions on
// features against target. Rows with a NaN target are skipped.
func (e *Estimator) Score(ctx context.Context, features *dataset.Table, target []float64) (float64, error) {
	if len(target) != features.Rows() {
		return 0, interfaces.NewEncodingError("", "target has %d values for %d rows", len(target), features.Rows())
	}
	preds, err := e.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	return RSquared(preds, target)
}

// RSquared is the coefficient of determination of preds against observed,
// ignoring rows where observed is NaN
func RSquared(preds, observed []float64) (float64, error) {
	if len(preds) != len(observed) {
		return 0, fmt.Errorf("have %d predictions for %d observations", len(preds), len(observed))
	}
	var est, obs []float64
	for i, y := range observed {
		if math.IsNaN(y) {
			continue
		}
		est = append(est, preds[i])
		obs = append(obs, y)
	}
	if len(obs) < 2 {
		return 0, fmt.Errorf("score needs at least two observed targets, got %d", len(obs))
	}
	return stat.RSquaredFrom(est, obs, nil), nil
}

// Description returns the parsed model
func (e *Estimator) Description() (*model.Description, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	return st.Description, nil
}

// Usage returns the attribute usage table
func (e *Estimator) Usage() ([]model.UsageStat, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	return st.Usage, nil
}

// Variables returns the all/used variable summary
func (e *Estimator) Variables() (model.Summary, error) {
	st, err := e.State()
	if err != nil {
		return model.Summary{}, err
	}
	return st.Variables, nil
}

// Splits returns the rule conditions with training percentiles
func (e *Estimator) Splits() ([]model.Split, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	return st.Splits, nil
}

// MaxDistance returns the stored maxd value
func (e *Estimator) MaxDistance() (model.NullFloat, error) {
	st, err := e.State()
	if err != nil {
		return model.NullFloat{}, err
	}
	return st.MaxDistance, nil
}
