/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for cubist-go. Defines the engine boundary (training and
prediction requests/results) used across packages to break import cycles between the
estimator, the process engine, and the CLI.
*/

package interfaces

import (
	"context"
	"time"
)

// Composite controls whether the engine builds rule-only, instance-aware or
// self-selected composite models.
type Composite string

const (
	CompositeYes  Composite = "yes"
	CompositeNo   Composite = "no"
	CompositeAuto Composite = "auto"
)

// TrainRequest carries the encoded training inputs and scalar controls for one engine run
type TrainRequest struct {
	Names         string    // Schema ("names") text
	Data          string    // Row-encoded training data
	Unbiased      bool      // Ask for unbiased rules
	Composite     Composite // Composite model mode
	Neighbors     int       // Neighbors used for instance statistics during training
	Committees    int       // Number of committees
	Sample        float64   // Fraction of rows sampled for model building (0 = all)
	Seed          int       // Engine random seed
	Rules         int       // Upper bound on rules per committee
	Extrapolation float64   // Extrapolation fraction in [0, 1]
}

// TrainResult holds the two texts returned by the engine after training
type TrainResult struct {
	Model       string        // Model description text
	Diagnostics string        // Diagnostics/log stream
	Duration    time.Duration // Wall time of the engine call
}

// PredictRequest carries the encoded inputs of one prediction run
type PredictRequest struct {
	Cases        string // Row-encoded cases to predict
	Names        string // Schema text the model was trained with
	TrainingData string // Training data, required when instance correction is on
	Model        string // Model text, already toggled for this call
	Rows         int    // Number of rows in Cases
}

// PredictResult holds the engine's predictions
type PredictResult struct {
	Predictions []float64     // One prediction per case
	Diagnostics string        // Empty on success
	Duration    time.Duration // Wall time of the engine call
}

// Engine is the opaque rule-induction engine. Implementations must not retain
// the request texts after returning.
type Engine interface {
	Train(ctx context.Context, req *TrainRequest) (*TrainResult, error)
	Predict(ctx context.Context, req *PredictRequest) (*PredictResult, error)
	Name() string
}
