/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: csv.go
Description: CSV loader for tables. Infers continuous vs categorical columns from the
observed cells, honours forced categorical columns and configurable missing tokens.
*/

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVOptions configures ReadCSV
type CSVOptions struct {
	Categorical   []string // Columns forced to categorical
	MissingTokens []string // Cell values read as missing
	Comma         rune     // Field delimiter, ',' when zero
}

// DefaultMissingTokens are the cell values treated as missing when none are configured
var DefaultMissingTokens = []string{"", "?", "NA", "NaN", "nan", "null"}

// ReadCSV reads a header-first CSV stream into a table
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	missing := opts.MissingTokens
	if len(missing) == 0 {
		missing = DefaultMissingTokens
	}
	isMissing := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		isMissing[m] = struct{}{}
	}
	forced := make(map[string]struct{}, len(opts.Categorical))
	for _, c := range opts.Categorical {
		forced[c] = struct{}{}
	}

	header := records[0]
	body := records[1:]
	table := &Table{Columns: make([]Column, len(header))}
	for j, name := range header {
		name = strings.TrimSpace(name)
		cells := make([]string, len(body))
		for i, rec := range body {
			if j >= len(rec) {
				return nil, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(rec), len(header))
			}
			cells[i] = strings.TrimSpace(rec[j])
		}
		_, isForced := forced[name]
		table.Columns[j] = inferColumn(name, cells, isMissing, isForced)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// inferColumn builds a column, continuous unless forced or any present cell fails to parse
func inferColumn(name string, cells []string, isMissing map[string]struct{}, categorical bool) Column {
	if !categorical {
		values := make([]Value, len(cells))
		numeric := true
		for i, cell := range cells {
			if _, ok := isMissing[cell]; ok {
				values[i] = Missing()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				break
			}
			values[i] = Num(v)
		}
		if numeric {
			return Column{Name: name, Kind: Continuous, Values: values}
		}
	}

	values := make([]Value, len(cells))
	for i, cell := range cells {
		if _, ok := isMissing[cell]; ok {
			values[i] = Missing()
			continue
		}
		values[i] = Str(cell)
	}
	return Column{Name: name, Kind: Categorical, Values: values}
}
