/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: guard.go
Description: Reserved name guard. When the schema fell back to the engine's reserved
weight-column name, the engine echoes that name back in its texts; this swaps it for a
display label and cuts the stale header fragment between the label and the entries marker.
*/

package model

import (
	"strings"

	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// DisplayLabel replaces the reserved name in engine output
const DisplayLabel = "sample"

// NeedsRepair reports whether the names text declares the reserved column
func NeedsRepair(names string) bool {
	return strings.HasPrefix(names, encoding.ReservedWeightName+":") ||
		strings.Contains(names, "\n"+encoding.ReservedWeightName+":")
}

// RepairDiagnostics substitutes the display label for the reserved name
func RepairDiagnostics(diagnostics string) string {
	return strings.ReplaceAll(diagnostics, encoding.ReservedWeightName, DisplayLabel)
}

// RepairModel keeps the text before the first reserved name joined to the text
// from the entries line onward, with the display label substituted throughout.
// The entries line must appear exactly once, after the reserved name.
func RepairModel(text string) (string, error) {
	label := strings.Index(text, encoding.ReservedWeightName)
	if label < 0 {
		return "", interfaces.NewModelParseError(0, "reserved column repair: %q not found in model", encoding.ReservedWeightName)
	}

	// the marker is the entries key at the start of a header line
	marker, n, offset := -1, 0, 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if strings.HasPrefix(line, MarkerToken+`="`) {
			if n == 0 {
				marker = offset
			}
			n++
		}
		offset += len(line)
	}
	switch {
	case n == 0:
		return "", interfaces.NewModelParseError(0, "reserved column repair: marker %q not found in model", MarkerToken)
	case n > 1:
		return "", interfaces.NewModelParseError(0, "reserved column repair: marker %q appears %d times", MarkerToken, n)
	case marker < label:
		return "", interfaces.NewModelParseError(0, "reserved column repair: marker %q precedes %q", MarkerToken, encoding.ReservedWeightName)
	}
	return text[:label] + RepairDiagnostics(text[marker:]), nil
}
