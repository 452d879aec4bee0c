/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: params.go
Description: Estimator parameters and their validation. Bounds mirror what the engine
accepts; the seed is optional and drawn from the estimator's injected random source
when absent.
*/

package core

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// SeedModulus bounds engine seeds
const SeedModulus = 4095

// Params holds the estimator configuration
type Params struct {
	Rules         int                  `json:"rules" validate:"min=1,max=1000000"`     // Upper bound on rules per committee
	Committees    int                  `json:"committees" validate:"min=1,max=100"`    // Boosted committees
	Unbiased      bool                 `json:"unbiased"`                               // Ask for unbiased rules
	Extrapolation float64              `json:"extrapolation" validate:"min=0,max=1"`   // How far predictions may leave the training range
	Sample        float64              `json:"sample" validate:"min=0,lt=1"`           // Fraction of rows used for building, 0 = all
	Seed          *int                 `json:"seed,omitempty"`                         // Engine seed, drawn when nil
	TargetLabel   string               `json:"target_label" validate:"required"`       // Name of the outcome in the names text
	WeightName    string               `json:"weight_name"`                            // Case-weight column name, reserved name when empty
	Neighbors     int                  `json:"neighbors" validate:"min=0,max=9"`       // Instances used to correct predictions
	Composite     interfaces.Composite `json:"composite" validate:"oneof=yes no auto"` // Composite model mode for training
	Verbose       bool                 `json:"verbose"`                                // Log engine diagnostics at info level
}

// DefaultParams returns the engine defaults
func DefaultParams() Params {
	return Params{
		Rules:         100,
		Committees:    1,
		Extrapolation: 1.0,
		TargetLabel:   "outcome",
		Composite:     interfaces.CompositeYes,
	}
}

var validate = validator.New()

// Validate checks every bound and reports all violations together
func (p *Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(msgs, "; "))
}
