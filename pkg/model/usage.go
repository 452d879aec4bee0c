/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: usage.go
Description: Usage statistics parser. Reads the "Attribute usage" table of the engine
diagnostics: per variable, the share of cases where it appears in a rule condition and
in a rule formula. Blank cells are placed by their column under the Conds/Model header.
*/

package model

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kleascm/cubist-go/pkg/interfaces"
)

const usageHeading = "Attribute usage"

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// ParseUsage returns one UsageStat per variable, in the order given. Variables
// missing from the table get 0/0.
func ParseUsage(diagnostics string, variables []string) ([]UsageStat, error) {
	stats := make([]UsageStat, len(variables))
	index := make(map[string]int, len(variables))
	for i, v := range variables {
		stats[i].Variable = v
		index[v] = i
	}

	lines := strings.Split(diagnostics, "\n")
	start := -1
	for i, l := range lines {
		if strings.Contains(l, usageHeading) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return stats, nil
	}

	// boundary splits the Conds column from the Model column, -1 when unknown
	boundary := -1
	inTable := false
	for i := start; i < len(lines); i++ {
		l := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(l) == "" {
			if inTable {
				break
			}
			continue
		}
		if boundary < 0 && !inTable {
			c, m := strings.Index(l, "Conds"), strings.Index(l, "Model")
			if c >= 0 && m > c {
				boundary = (c + len("Conds") + m + len("Model")) / 2
				continue
			}
		}

		matches := percentPattern.FindAllStringSubmatchIndex(l, -1)
		if len(matches) == 0 {
			break
		}
		inTable = true

		last := matches[len(matches)-1]
		name := strings.TrimSpace(l[last[1]:])
		slot, known := index[name]

		var values []float64
		for _, m := range matches {
			v, err := strconv.ParseFloat(l[m[2]:m[3]], 64)
			if err != nil || v > 100 {
				return nil, interfaces.NewModelParseError(i+1, "bad usage percentage %q", l[m[0]:m[1]])
			}
			values = append(values, v)
		}
		if !known {
			continue
		}

		switch {
		case len(values) >= 2:
			stats[slot].Conditions = values[0]
			stats[slot].Model = values[1]
		case boundary >= 0 && matches[0][1] > boundary:
			stats[slot].Model = values[0]
		default:
			stats[slot].Conditions = values[0]
		}
	}
	return stats, nil
}
