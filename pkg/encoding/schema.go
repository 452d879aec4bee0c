/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: schema.go
Description: Schema encoder. Builds the ordered attribute list of a training table
(features, target label, optional case weight) and renders it as the engine's "names"
text. Attribute order here is the field order used by the data encoder.
*/

package encoding

import (
	"strings"

	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

const (
	// ReservedWeightName is the engine-internal column name used when the caller
	// gives no name for the case-weight column
	ReservedWeightName = "__Sample"
	// MissingToken renders a missing cell
	MissingToken = "?"
	// FieldSeparator separates fields of a data row
	FieldSeparator = ","
)

// AttributeKind is the role of an attribute in the names text
type AttributeKind string

const (
	KindContinuous  AttributeKind = "continuous"
	KindCategorical AttributeKind = "categorical"
	KindLabel       AttributeKind = "label"
	KindCaseWeight  AttributeKind = "case-weight"
)

// Attribute is one declared column
type Attribute struct {
	Name   string        `yaml:"name"`
	Kind   AttributeKind `yaml:"kind"`
	Labels []string      `yaml:"labels,omitempty"` // Categorical vocabulary, first-observed order
}

// Schema is the ordered ColumnSchema of one training call
type Schema struct {
	Target     string      `yaml:"target"`
	Attributes []Attribute `yaml:"attributes"` // Features, then label, then case weight
}

// SchemaOptions names the target and the optional case-weight column
type SchemaOptions struct {
	Label      string // Target label, written as the first declaration
	Weighted   bool   // Whether a case-weight column follows the target
	WeightName string // Case-weight column name, ReservedWeightName when empty
}

// BuildSchema derives the schema of a feature table
func BuildSchema(table *dataset.Table, opts SchemaOptions) (*Schema, error) {
	if err := table.Validate(); err != nil {
		return nil, interfaces.NewEncodingError("", "%v", err)
	}
	if err := checkName(opts.Label); err != nil {
		return nil, interfaces.NewEncodingError(opts.Label, "invalid target label: %v", err)
	}
	if opts.Label == ReservedWeightName {
		return nil, interfaces.NewEncodingError(opts.Label, "target label uses a reserved engine name")
	}

	weightName := ""
	if opts.Weighted {
		weightName = opts.WeightName
		if weightName == "" {
			weightName = ReservedWeightName
		} else if err := checkName(weightName); err != nil {
			return nil, interfaces.NewEncodingError(weightName, "invalid weight column name: %v", err)
		}
		if weightName == opts.Label {
			return nil, interfaces.NewEncodingError(weightName, "weight column collides with target label")
		}
	}

	s := &Schema{Target: opts.Label}
	for _, col := range table.Columns {
		if err := checkName(col.Name); err != nil {
			return nil, interfaces.NewEncodingError(col.Name, "invalid column name: %v", err)
		}
		switch col.Name {
		case opts.Label:
			return nil, interfaces.NewEncodingError(col.Name, "feature column collides with target label")
		case ReservedWeightName:
			return nil, interfaces.NewEncodingError(col.Name, "feature column uses a reserved engine name")
		}
		if weightName != "" && col.Name == weightName {
			return nil, interfaces.NewEncodingError(col.Name, "feature column collides with weight column")
		}

		attr := Attribute{Name: col.Name}
		switch col.Kind {
		case dataset.Continuous:
			attr.Kind = KindContinuous
		case dataset.Categorical:
			labels, err := vocabulary(col)
			if err != nil {
				return nil, err
			}
			attr.Kind = KindCategorical
			attr.Labels = labels
		default:
			return nil, interfaces.NewEncodingError(col.Name, "unsupported column kind %s", col.Kind)
		}
		s.Attributes = append(s.Attributes, attr)
	}

	s.Attributes = append(s.Attributes, Attribute{Name: opts.Label, Kind: KindLabel})
	if weightName != "" {
		s.Attributes = append(s.Attributes, Attribute{Name: weightName, Kind: KindCaseWeight})
	}
	return s, nil
}

// vocabulary enumerates the labels of a categorical column in first-observed order
func vocabulary(col dataset.Column) ([]string, error) {
	seen := make(map[string]struct{})
	var labels []string
	for i, v := range col.Values {
		if !v.Valid {
			continue
		}
		if err := checkLabel(v.Str); err != nil {
			return nil, &interfaces.EncodingError{Column: col.Name, Row: i, Reason: err.Error()}
		}
		if _, ok := seen[v.Str]; ok {
			continue
		}
		seen[v.Str] = struct{}{}
		labels = append(labels, v.Str)
	}
	if len(labels) == 0 {
		return nil, interfaces.NewEncodingError(col.Name, "categorical column has no observed labels")
	}
	return labels, nil
}

// Features returns the feature attributes in field order
func (s *Schema) Features() []Attribute {
	var out []Attribute
	for _, a := range s.Attributes {
		if a.Kind == KindContinuous || a.Kind == KindCategorical {
			out = append(out, a)
		}
	}
	return out
}

// FeatureNames returns the feature names in field order
func (s *Schema) FeatureNames() []string {
	features := s.Features()
	names := make([]string, len(features))
	for i, a := range features {
		names[i] = a.Name
	}
	return names
}

// Weight returns the case-weight attribute, or nil
func (s *Schema) Weight() *Attribute {
	for i := range s.Attributes {
		if s.Attributes[i].Kind == KindCaseWeight {
			return &s.Attributes[i]
		}
	}
	return nil
}

// Names renders the schema text. Header lines are written as comments.
func (s *Schema) Names(header ...string) string {
	var b strings.Builder
	for _, h := range header {
		for _, line := range strings.Split(h, "\n") {
			b.WriteString("| ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(Escape(s.Target))
	b.WriteString(".\n\n")

	for _, a := range s.Attributes {
		b.WriteString(Escape(a.Name))
		b.WriteString(": ")
		switch a.Kind {
		case KindCategorical:
			for i, l := range a.Labels {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(Escape(l))
			}
			b.WriteString(".")
		default:
			b.WriteString("continuous.")
		}
		b.WriteString("\n")
	}
	return b.String()
}
