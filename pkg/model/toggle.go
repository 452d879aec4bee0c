/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: toggle.go
Description: Correction toggle. Derives a per-call model text with instance-based
correction switched on for K neighbors; the stored text is never modified.
*/

package model

import (
	"fmt"
	"strings"

	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/interfaces"
)

// MaxNeighbors is the largest neighbor count the engine accepts
const MaxNeighbors = 9

// Toggle returns the model text to send for one prediction call. neighbors == 0
// returns text unchanged. For neighbors > 0 the text must hold InstancesOff and
// maxd must be set.
func Toggle(text string, neighbors int, maxd NullFloat) (string, error) {
	if neighbors == 0 {
		return text, nil
	}
	if neighbors < 0 || neighbors > MaxNeighbors {
		return "", &interfaces.ModelStateError{Reason: fmt.Sprintf("neighbors must be between 0 and %d, got %d", MaxNeighbors, neighbors)}
	}
	if !maxd.Valid {
		return "", &interfaces.ModelStateError{Reason: "model has no maxd; it was not built with instance statistics"}
	}
	at := strings.Index(text, InstancesOff)
	if at < 0 {
		return "", &interfaces.ModelStateError{Reason: "model text has no " + InstancesOff + " attribute to enable"}
	}
	on := fmt.Sprintf(`insts="1" nn="%d" maxd="%s"`, neighbors, encoding.FormatFloat(maxd.Value))
	return text[:at] + on + text[at+len(InstancesOff):], nil
}
