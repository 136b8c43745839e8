package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapasp/pkg/token"
)

// SourceName is the file name reported for text parsed from memory.
const SourceName = "<string>"

// ErrParsingFailed is returned by ParseProgram when a diagnostic of code
// CodeRuntimeError was reported.
var ErrParsingFailed = errors.New("parsing failed")

// MessageCode classifies messages passed to a Logger.
type MessageCode int

// Message codes.
const (
	CodeRuntimeError MessageCode = iota
	CodeOperationUndefined
	CodeAtomUndefined
	CodeVariableUnbounded
	CodeOther
)

func (c MessageCode) String() string {
	switch c {
	case CodeRuntimeError:
		return "runtime error"
	case CodeOperationUndefined:
		return "operation undefined"
	case CodeAtomUndefined:
		return "atom undefined"
	case CodeVariableUnbounded:
		return "variable unbounded"
	}
	return "other"
}

// Logger receives diagnostics reported while parsing.
type Logger func(code MessageCode, message string)

// Diagnostic is a positioned syntax error. Its Error method renders the
// single-line form "<string>:L:C[-C2]: error: message" with 1-based,
// inclusive columns.
type Diagnostic struct {
	Span    token.Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%s: error: %s", SourceName, d.Location(), d.Message)
}

// Location renders the position part of the diagnostic.
func (d *Diagnostic) Location() string {
	start, end := d.Span.Start, d.Span.End
	last := end.Column - 1 // End is exclusive
	switch {
	case end.Line != start.Line && end.Line > 0:
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Column, end.Line, last)
	case last <= start.Column:
		return fmt.Sprintf("%d:%d", start.Line, start.Column)
	}
	return fmt.Sprintf("%d:%d-%d", start.Line, start.Column, last)
}

// Common error messages
const (
	ErrUnexpectedToken = "syntax error, unexpected %s"
	ErrExpectedToken   = "syntax error, unexpected %s, expecting %s"
	ErrLexer           = "lexer error, unexpected %s"
	ErrOpenComment     = "lexer error, unterminated block comment"
	ErrNumberRange     = "number out of range: %s"
	ErrNotGround       = "term is not ground: %s"
	ErrUndefinedTerm   = "term is undefined: %s"
	ErrTrailingInput   = "unexpected input after term: %s"
)
