/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: splits.go
Description: Flat tables derived from a parsed model: one row per rule condition (with
the cut's percentile in the training data) and one row per rule formula.
*/

package model

import (
	"math"
	"sort"

	"github.com/kleascm/cubist-go/pkg/dataset"
	"gonum.org/v1/gonum/stat"
)

// Split is one rule condition as a table row
type Split struct {
	Committee  int
	Rule       int
	Variable   string
	Type       ConditionType
	Operator   Operator  // Threshold only
	Value      NullFloat // Threshold cut
	Labels     []string  // Membership labels
	Percentile NullFloat // Share of training values at or below the cut
}

// Splits lists every condition in committee/rule order. training may be nil, in
// which case percentiles are left unset.
func (d *Description) Splits(training *dataset.Table) []Split {
	sorted := make(map[string][]float64)
	var out []Split
	for _, r := range d.Rules() {
		for _, c := range r.Conditions {
			s := Split{Committee: r.Committee, Rule: r.Number, Variable: c.Attribute, Type: c.Type}
			if c.Type == Membership {
				s.Labels = append([]string(nil), c.Labels...)
				out = append(out, s)
				continue
			}
			s.Operator = c.Operator
			s.Value = Some(c.Cut)
			if training != nil {
				x, ok := sorted[c.Attribute]
				if !ok {
					x = sortedValues(training, c.Attribute)
					sorted[c.Attribute] = x
				}
				if len(x) > 0 {
					s.Percentile = Some(stat.CDF(c.Cut, stat.Empirical, x, nil))
				}
			}
			out = append(out, s)
		}
	}
	return out
}

func sortedValues(t *dataset.Table, name string) []float64 {
	col, ok := t.Column(name)
	if !ok {
		return nil
	}
	raw, err := col.Floats()
	if err != nil {
		return nil
	}
	x := raw[:0:0]
	for _, v := range raw {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	sort.Float64s(x)
	return x
}

// CoefficientRow is one rule's formula as a table row
type CoefficientRow struct {
	Committee    int
	Rule         int
	Intercept    float64
	Coefficients []NullFloat // Aligned to Description.Variables
}

// CoefficientTable lists every rule formula in committee/rule order
func (d *Description) CoefficientTable() []CoefficientRow {
	rules := d.Rules()
	out := make([]CoefficientRow, len(rules))
	for i, r := range rules {
		out[i] = CoefficientRow{
			Committee:    r.Committee,
			Rule:         r.Number,
			Intercept:    r.Intercept,
			Coefficients: append([]NullFloat(nil), r.Coefficients...),
		}
	}
	return out
}
