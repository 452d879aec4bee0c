/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: data.go
Description: Data encoder. Renders table rows as the engine's comma separated data text,
fields in schema order with the target after the features and the case weight last.
*/

package encoding

import (
	"math"
	"strconv"
	"strings"

	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// EncodeData renders training rows. target must have one entry per row; weights
// must too when the schema declares a case-weight column.
func EncodeData(s *Schema, table *dataset.Table, target []float64, weights []float64) (string, error) {
	rows := table.Rows()
	if len(target) != rows {
		return "", interfaces.NewEncodingError(s.Target, "target has %d values, table has %d rows", len(target), rows)
	}
	w := s.Weight()
	switch {
	case w != nil && len(weights) != rows:
		return "", interfaces.NewEncodingError(w.Name, "weights have %d values, table has %d rows", len(weights), rows)
	case w == nil && weights != nil:
		return "", interfaces.NewEncodingError("", "weights given but the schema has no case-weight column")
	}
	return encode(s, table, target, weights, true)
}

// EncodeCases renders prediction rows. The target and any case weight are written
// as missing; labels unseen during training are passed through.
func EncodeCases(s *Schema, table *dataset.Table) (string, error) {
	return encode(s, table, nil, nil, false)
}

func encode(s *Schema, table *dataset.Table, target, weights []float64, strict bool) (string, error) {
	if err := table.Validate(); err != nil {
		return "", interfaces.NewEncodingError("", "%v", err)
	}

	features := s.Features()
	columns := make([]*dataset.Column, len(features))
	vocab := make([]map[string]struct{}, len(features))
	for j, attr := range features {
		col, ok := table.Column(attr.Name)
		if !ok {
			return "", interfaces.NewEncodingError(attr.Name, "column missing from table")
		}
		if (attr.Kind == KindContinuous) != (col.Kind == dataset.Continuous) {
			return "", interfaces.NewEncodingError(attr.Name, "column is %s but the schema declares it %s", col.Kind, attr.Kind)
		}
		columns[j] = col
		if strict && attr.Kind == KindCategorical {
			vocab[j] = make(map[string]struct{}, len(attr.Labels))
			for _, l := range attr.Labels {
				vocab[j][l] = struct{}{}
			}
		}
	}
	weighted := s.Weight() != nil

	var b strings.Builder
	rows := table.Rows()
	for i := 0; i < rows; i++ {
		for j, col := range columns {
			v := col.Values[i]
			field, err := encodeValue(col, i, v, vocab[j])
			if err != nil {
				return "", err
			}
			b.WriteString(field)
			b.WriteString(FieldSeparator)
		}

		if target != nil {
			field, err := encodeFloat(s.Target, i, target[i])
			if err != nil {
				return "", err
			}
			b.WriteString(field)
		} else {
			b.WriteString(MissingToken)
		}

		if weighted {
			b.WriteString(FieldSeparator)
			if weights != nil {
				field, err := encodeFloat(s.Weight().Name, i, weights[i])
				if err != nil {
					return "", err
				}
				b.WriteString(field)
			} else {
				b.WriteString(MissingToken)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func encodeValue(col *dataset.Column, row int, v dataset.Value, vocab map[string]struct{}) (string, error) {
	if !v.Valid {
		return MissingToken, nil
	}
	if col.Kind == dataset.Continuous {
		return encodeFloat(col.Name, row, v.Num)
	}
	if err := checkLabel(v.Str); err != nil {
		return "", &interfaces.EncodingError{Column: col.Name, Row: row, Reason: err.Error()}
	}
	if vocab != nil {
		if _, ok := vocab[v.Str]; !ok {
			return "", &interfaces.EncodingError{Column: col.Name, Row: row, Reason: "label " + strconv.Quote(v.Str) + " is not in the schema vocabulary"}
		}
	}
	return Escape(v.Str), nil
}

func encodeFloat(column string, row int, v float64) (string, error) {
	if math.IsNaN(v) {
		return MissingToken, nil
	}
	if math.IsInf(v, 0) {
		return "", &interfaces.EncodingError{Column: column, Row: row, Reason: "infinite value"}
	}
	return FormatFloat(v), nil
}

// FormatFloat renders a float in its shortest round-trip form
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
