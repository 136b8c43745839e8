// Package parser provides the lexer and recursive-descent parser of the
// answer set programming input language.
//
// # Usage
//
//	err := parser.ParseProgram("a. b :- a.", func(stmt ast.Statement) {
//	    // handle statement
//	})
//
//	sym, err := parser.ParseTerm("f(1+2,\"x\")")
//
// Failures carry a *Diagnostic, retrievable with errors.As.
//
// # Grammar Overview
//
//	program    → statement*
//	statement  → head [":-" body] "." | ":-" body "." | ":~" body "." "[" weight "]"
//	           | "#program" id ["(" ids ")"] "." | "#show" ... "." | "#const" ... "."
//	           | ("#minimize" | "#maximize") "{" weighted (";" weighted)* "}" "."
//	head       → literal | condlit (";"|"|" condlit)+ | [term [cmp]] "{" condlits "}" [[cmp] term]
//	body       → element ((";"|",") element)*
//	term       → additive [".." additive]
//
// See statement.go and term.go for the individual productions.
package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// Parser parses program text into AST statements.
type Parser struct {
	lexer *Lexer
	prev  token.Token // last consumed token
	token token.Token // current token
	peek  token.Token // lookahead token
	peek2 token.Token // second lookahead token
	err   *Diagnostic // first error; parsing stops there
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Option configures ParseProgram.
type Option func(*options)

type options struct {
	logger Logger
}

// WithLogger reports diagnostics to l in addition to the returned error.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// ParseProgram parses text and calls callback once per statement, in
// source order. A synthetic "#program base." statement is delivered
// first. Parsing stops at the first syntax error, which is logged with
// CodeRuntimeError and returned wrapped in ErrParsingFailed.
func ParseProgram(text string, callback func(ast.Statement), opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := NewParser(text)
	callback(&ast.Program{Name: "base"})
	for !p.check(token.EOF) {
		stmts := p.parseStatement()
		if p.err != nil {
			break
		}
		for _, stmt := range stmts {
			callback(stmt)
		}
	}

	if p.err != nil {
		if o.logger != nil {
			o.logger(CodeRuntimeError, p.err.Error())
		}
		return fmt.Errorf("%w: %w", ErrParsingFailed, p.err)
	}
	return nil
}

// ParseStatements parses text and returns its statements, including the
// leading "#program base." statement.
func ParseStatements(text string) ([]ast.Statement, error) {
	var stmts []ast.Statement
	err := ParseProgram(text, func(s ast.Statement) {
		stmts = append(stmts, s)
	})
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

// ParseTerm parses and evaluates a single ground term. Arithmetic is
// evaluated; variables and terms denoting zero or several values are
// rejected. Errors are *Diagnostic values.
func ParseTerm(text string) (symbol.Symbol, error) {
	p := NewParser(text)
	start := p.token
	t := p.parseTerm()
	if p.err == nil && !p.check(token.EOF) {
		p.unexpected()
	}
	if p.err != nil {
		return symbol.Symbol{}, p.err
	}

	span := p.spanFrom(start)
	vals, err := ast.Evaluate(t, nil)
	if errors.Is(err, ast.ErrUnboundVariable) {
		return symbol.Symbol{}, &Diagnostic{Span: span, Message: fmt.Sprintf(ErrNotGround, t)}
	}
	if err != nil {
		return symbol.Symbol{}, &Diagnostic{Span: span, Message: err.Error()}
	}
	if len(vals) != 1 {
		return symbol.Symbol{}, &Diagnostic{Span: span, Message: fmt.Sprintf(ErrUndefinedTerm, t)}
	}
	return vals[0], nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prev = p.token
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.unexpected()
	return false
}

// failed reports whether an error has been recorded.
func (p *Parser) failed() bool {
	return p.err != nil
}

// spanFrom returns the span from the start of tok to the end of the last
// consumed token.
func (p *Parser) spanFrom(tok token.Token) token.Span {
	return token.Span{Start: tok.Pos, End: p.prev.End}
}

// unexpected records a syntax error at the current token. A closing
// bracket directly after a comma is reported from the comma on.
func (p *Parser) unexpected() {
	span := token.Span{Start: p.token.Pos, End: p.token.End}
	msg := fmt.Sprintf(ErrUnexpectedToken, p.token.Type)
	switch p.token.Type {
	case token.ILLEGAL:
		msg = fmt.Sprintf(ErrLexer, p.token.Literal)
		if p.token.Literal == unterminatedComment {
			msg = ErrOpenComment
		}
	case token.RPAREN, token.RBRACE, token.RBRACKET:
		if p.prev.Type == token.COMMA && p.prev.Pos.Line == p.token.Pos.Line {
			span.Start = p.prev.Pos
		}
	}
	p.addError(span, msg)
}

// addError records a parse error; only the first one is kept.
func (p *Parser) addError(span token.Span, msg string) {
	if p.err != nil {
		return
	}
	p.err = &Diagnostic{Span: span, Message: msg}
}
