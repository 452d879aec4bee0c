/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Structured form of an engine model: committees of rules, each rule a list of
conditions guarding a linear formula whose coefficients are aligned to the training
columns. Unused coefficient slots stay unset rather than zero.
*/

package model

import (
	"fmt"
	"strings"

	"github.com/kleascm/cubist-go/pkg/encoding"
)

// NullFloat is a float that may be absent
type NullFloat struct {
	Value float64 `yaml:"value"`
	Valid bool    `yaml:"valid"`
}

// Some returns a present NullFloat
func Some(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

func (n NullFloat) String() string {
	if !n.Valid {
		return "NA"
	}
	return encoding.FormatFloat(n.Value)
}

// Operator is the comparison of a threshold condition
type Operator string

const (
	LessOrEqual    Operator = "<="
	GreaterThan    Operator = ">"
	GreaterOrEqual Operator = ">="
)

// ConditionType separates numeric thresholds from categorical membership tests
type ConditionType int

const (
	Threshold ConditionType = iota
	Membership
)

// Condition is one conjunct of a rule
type Condition struct {
	Attribute string
	Type      ConditionType
	Operator  Operator // Threshold only
	Cut       float64  // Threshold only
	Labels    []string // Membership only
}

func (c Condition) String() string {
	if c.Type == Membership {
		return fmt.Sprintf("%s in {%s}", c.Attribute, strings.Join(c.Labels, ", "))
	}
	return fmt.Sprintf("%s %s %s", c.Attribute, c.Operator, encoding.FormatFloat(c.Cut))
}

// Rule is a conjunction of conditions guarding a linear formula
type Rule struct {
	Committee    int         // 1-based committee number
	Number       int         // 1-based rule number within the committee
	Cover        float64     // Training cases covered
	Mean         float64     // Mean target over covered cases
	Low          float64     // Lowest target value covered
	High         float64     // Highest target value covered
	EstErr       float64     // Estimated error
	Conditions   []Condition // Zero or more conditions
	Intercept    float64     // Constant term of the formula
	Coefficients []NullFloat // One slot per training variable
}

// Committee is one complete rule-based sub-model
type Committee struct {
	Number int
	Rules  []Rule
}

// Description is the parsed model
type Description struct {
	Variables   []string    // Training variables, in schema order
	Committees  []Committee // Committees in engine order
	MaxDistance NullFloat   // Instance-correction normalisation constant
}

// RuleCount returns the number of rules over all committees
func (d *Description) RuleCount() int {
	n := 0
	for _, c := range d.Committees {
		n += len(c.Rules)
	}
	return n
}

// Rules returns every rule in committee order
func (d *Description) Rules() []Rule {
	out := make([]Rule, 0, d.RuleCount())
	for _, c := range d.Committees {
		out = append(out, c.Rules...)
	}
	return out
}

// Summary lists every input variable and the ones the model references
type Summary struct {
	All  []string `yaml:"all"`
	Used []string `yaml:"used"`
}

// Summary derives the used set: variables named in a condition or holding a set
// coefficient in any rule. A set coefficient of zero still counts.
func (d *Description) Summary() Summary {
	used := make(map[string]bool, len(d.Variables))
	for _, r := range d.Rules() {
		for _, c := range r.Conditions {
			used[c.Attribute] = true
		}
		for i, coef := range r.Coefficients {
			if coef.Valid {
				used[d.Variables[i]] = true
			}
		}
	}
	s := Summary{All: append([]string(nil), d.Variables...)}
	for _, v := range d.Variables {
		if used[v] {
			s.Used = append(s.Used, v)
		}
	}
	return s
}

// UsageStat is how often a variable is used, as percentages of the training cases
type UsageStat struct {
	Variable   string  `yaml:"variable"`
	Conditions float64 `yaml:"conditions"` // Share of cases where it appears in a condition
	Model      float64 `yaml:"model"`      // Share of cases where it appears in a formula
}
