package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// ParseError is a diagnostic for malformed program, term or atom text.
// Columns are 1-based and inclusive.
type ParseError struct {
	Text        string
	Line        int
	ColumnBegin int
	ColumnEnd   int
	Message     string
}

// Error renders the message followed by the offending source line and a
// caret line under columns [ColumnBegin, ColumnEnd]. The line number
// gutter is zero-padded to the width of the largest line number.
func (e *ParseError) Error() string {
	lines := strings.Split(e.Text, "\n")
	gutter := len(strconv.Itoa(len(lines)))

	src := ""
	if e.Line >= 1 && e.Line <= len(lines) {
		src = lines[e.Line-1]
	}
	begin := min(max(e.ColumnBegin, 1), len(src)+1)
	end := min(max(e.ColumnEnd, begin), len(src))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Message)
	fmt.Fprintf(&b, "%0*d | %s\n", gutter, e.Line, src)
	fmt.Fprintf(&b, "%s | %s%s",
		strings.Repeat(" ", gutter),
		strings.Repeat(" ", displayWidth(src[:begin-1])),
		strings.Repeat("^", max(1, displayWidth(src[begin-1:end]))))
	return b.String()
}

// Location returns "line:begin-end", or "line:col" for a single column.
func (e *ParseError) Location() string {
	if e.ColumnEnd <= e.ColumnBegin {
		return fmt.Sprintf("%d:%d", e.Line, e.ColumnBegin)
	}
	return fmt.Sprintf("%d:%d-%d", e.Line, e.ColumnBegin, e.ColumnEnd)
}

// Drop returns the error relative to Text[first:len(Text)-last]. It
// strips a synthetic prefix and suffix that were added around a fragment
// before parsing, and is only valid for errors on the first line.
func (e *ParseError) Drop(first, last int) (*ParseError, error) {
	if e.Line != 1 {
		return nil, validationf("cannot drop columns from an error on line %d", e.Line)
	}
	if first < 0 || last < 0 || first+last > len(e.Text) {
		return nil, validationf("cannot drop %d+%d bytes from %d bytes of text", first, last, len(e.Text))
	}
	return &ParseError{
		Text:        e.Text[first : len(e.Text)-last],
		Line:        e.Line,
		ColumnBegin: max(e.ColumnBegin-first, 1),
		ColumnEnd:   max(e.ColumnEnd-first, 1),
		Message:     e.Message,
	}, nil
}

// displayWidth counts terminal columns, two for wide and fullwidth runes.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

const diagnosticPrefix = parser.SourceName

// newParseError converts a single-line diagnostic of the form
// "<string>:<line>:<col>[-<col>]: error: <message>" for text.
func newParseError(text, diagnostic string) (*ParseError, error) {
	fields := strings.SplitN(diagnostic, ":", 4)
	if len(fields) != 4 || fields[0] != diagnosticPrefix {
		return nil, validationf("unexpected diagnostic: %s", diagnostic)
	}
	message, ok := strings.CutPrefix(fields[3], " error: ")
	if !ok {
		return nil, validationf("unexpected diagnostic: %s", diagnostic)
	}
	line, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, validationf("unexpected diagnostic line %q", fields[1])
	}
	begin, end, err := ParseRange(fields[2])
	if err != nil {
		return nil, err
	}
	return &ParseError{Text: text, Line: line, ColumnBegin: begin, ColumnEnd: end, Message: message}, nil
}

// asParseError converts an error carrying a *parser.Diagnostic into a
// *ParseError over text. Other errors are returned unchanged.
func asParseError(text string, err error) error {
	var d *parser.Diagnostic
	if !errors.As(err, &d) {
		return err
	}
	pe, convErr := newParseError(text, d.Error())
	if convErr != nil {
		return convErr
	}
	return pe
}

// ParseRange parses "N" or "N-M". A single number yields begin == end.
func ParseRange(s string) (begin, end int, err error) {
	first, second, isRange := strings.Cut(s, "-")
	begin, err = strconv.Atoi(first)
	if err != nil {
		return 0, 0, validationf("invalid range %q", s)
	}
	if !isRange {
		return begin, begin, nil
	}
	end, err = strconv.Atoi(second)
	if err != nil {
		return 0, 0, validationf("invalid range %q", s)
	}
	return begin, end, nil
}

// ParseGroundTerm parses and evaluates a ground term.
func ParseGroundTerm(text string) (symbol.Symbol, error) {
	sym, err := parser.ParseTerm(text)
	if err != nil {
		return symbol.Symbol{}, asParseError(text, err)
	}
	return sym, nil
}

// ParseProgram parses text that consists of plain rules only. Directives,
// weak constraints and #program parts are reported as a *ParseError.
func ParseProgram(text string) ([]*ast.Rule, error) {
	var (
		stmts    []ast.Statement
		messages []string
	)
	err := parser.ParseProgram(text, func(s ast.Statement) {
		stmts = append(stmts, s)
	}, parser.WithLogger(func(code parser.MessageCode, msg string) {
		if code == parser.CodeRuntimeError {
			messages = append(messages, msg)
		}
	}))
	if err != nil {
		if len(messages) != 1 {
			return nil, fmt.Errorf("expected one diagnostic, got %d: %w", len(messages), err)
		}
		pe, convErr := newParseError(text, messages[0])
		if convErr != nil {
			return nil, convErr
		}
		return nil, pe
	}

	if len(stmts) == 0 {
		return nil, validationf("missing program header")
	}
	if header, ok := stmts[0].(*ast.Program); !ok || header.Name != "base" || len(header.Parameters) > 0 {
		return nil, validationf("unexpected program header: %s", stmts[0])
	}

	rules := make([]*ast.Rule, 0, len(stmts)-1)
	for _, s := range stmts[1:] {
		r, ok := s.(*ast.Rule)
		if !ok {
			span := s.GetSpan()
			return nil, &ParseError{
				Text:        text,
				Line:        span.Start.Line,
				ColumnBegin: span.Start.Column,
				ColumnEnd:   lastColumn(span.Start.Column, span.End.Column, span.Start.Line == span.End.Line),
				Message:     "unsupported statement: " + s.String(),
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// lastColumn converts an exclusive end column into an inclusive one.
func lastColumn(begin, end int, sameLine bool) int {
	if !sameLine {
		return begin
	}
	return max(end-1, begin)
}

// ParseStatements parses text in the full input language, directives and
// weak constraints included. The leading "#program base." header is not
// returned. Syntax errors are reported as a *ParseError.
func ParseStatements(text string) ([]ast.Statement, error) {
	stmts, err := parser.ParseStatements(text)
	if err != nil {
		return nil, asParseError(text, err)
	}
	if len(stmts) == 0 {
		return nil, validationf("missing program header")
	}
	return stmts[1:], nil
}
