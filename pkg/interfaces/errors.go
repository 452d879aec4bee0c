/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error kinds shared by the encoders, the model text parser, the correction
toggle and the engine adapters. Each kind matches a sentinel through errors.Is so callers
can branch on the kind without caring about the detail.
*/

package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding marks malformed or inconsistent input tables and schemas
	ErrEncoding = errors.New("encoding error")
	// ErrModelParse marks engine output that does not match the model grammar
	ErrModelParse = errors.New("model parse error")
	// ErrModelState marks a stored model text that is not in its canonical form
	ErrModelState = errors.New("model state error")
	// ErrEngine marks an engine-reported failure
	ErrEngine = errors.New("engine error")
)

// EncodingError reports a problem with the input table or schema
type EncodingError struct {
	Column string // Offending column, if any
	Row    int    // Offending row (0-based), -1 when not row specific
	Reason string
}

func (e *EncodingError) Error() string {
	switch {
	case e.Column != "" && e.Row >= 0:
		return fmt.Sprintf("encoding error: column %q row %d: %s", e.Column, e.Row, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("encoding error: column %q: %s", e.Column, e.Reason)
	default:
		return "encoding error: " + e.Reason
	}
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// NewEncodingError builds an EncodingError that is not tied to a row
func NewEncodingError(column, format string, args ...interface{}) *EncodingError {
	return &EncodingError{Column: column, Row: -1, Reason: fmt.Sprintf(format, args...)}
}

// ModelParseError reports engine text that could not be parsed
type ModelParseError struct {
	Line   int // 1-based line in the model text, 0 when unknown
	Reason string
}

func (e *ModelParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("model parse error: line %d: %s", e.Line, e.Reason)
	}
	return "model parse error: " + e.Reason
}

func (e *ModelParseError) Is(target error) bool { return target == ErrModelParse }

// NewModelParseError builds a ModelParseError for the given line
func NewModelParseError(line int, format string, args ...interface{}) *ModelParseError {
	return &ModelParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// ModelStateError reports a toggle attempted on a model text in the wrong state
type ModelStateError struct {
	Reason string
}

func (e *ModelStateError) Error() string       { return "model state error: " + e.Reason }
func (e *ModelStateError) Is(target error) bool { return target == ErrModelState }

// EngineError surfaces the engine's diagnostics verbatim
type EngineError struct {
	Diagnostics string
	Err         error // Underlying process error, if any
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine error: %v\n%s", e.Err, e.Diagnostics)
	}
	return "engine error:\n" + e.Diagnostics
}

func (e *EngineError) Is(target error) bool { return target == ErrEngine }
func (e *EngineError) Unwrap() error        { return e.Err }
