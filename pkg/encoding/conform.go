/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: conform.go
Description: Coerces a table read without type hints (for example a prediction CSV) to
the column kinds recorded in a training schema.
*/

package encoding

import (
	"strconv"

	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// Conform returns a table holding the schema's feature columns, converted to the
// declared kinds. Extra table columns are dropped.
func Conform(s *Schema, table *dataset.Table) (*dataset.Table, error) {
	out := &dataset.Table{}
	for _, attr := range s.Features() {
		col, ok := table.Column(attr.Name)
		if !ok {
			return nil, interfaces.NewEncodingError(attr.Name, "column missing from table")
		}
		conv := dataset.Column{Name: col.Name, Kind: col.Kind, Values: col.Values}
		switch {
		case attr.Kind == KindCategorical && col.Kind == dataset.Continuous:
			conv.Kind = dataset.Categorical
			conv.Values = make([]dataset.Value, len(col.Values))
			for i, v := range col.Values {
				if v.Valid {
					conv.Values[i] = dataset.Str(FormatFloat(v.Num))
				}
			}
		case attr.Kind == KindContinuous && col.Kind == dataset.Categorical:
			conv.Kind = dataset.Continuous
			conv.Values = make([]dataset.Value, len(col.Values))
			for i, v := range col.Values {
				if !v.Valid {
					continue
				}
				f, err := strconv.ParseFloat(v.Str, 64)
				if err != nil {
					return nil, &interfaces.EncodingError{Column: col.Name, Row: i, Reason: "value " + strconv.Quote(v.Str) + " is not numeric"}
				}
				conv.Values[i] = dataset.Num(f)
			}
		}
		out.Columns = append(out.Columns, conv)
	}
	return out, nil
}
