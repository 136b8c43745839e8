// Package token defines the token types of the answer set programming
// input language.
//
// Directive keywords (#show, #count, ...) and the "not" keyword are
// resolved by the lexer through LookupIdent and LookupDirective.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT     // foo, bar_2 (starts lowercase)
	VARIABLE  // X, _Y (starts uppercase or underscore + letter)
	ANONYMOUS // _
	NUMBER    // 42
	STRING    // "hello"

	// Arithmetic operators
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	BSLASH // \ (modulo)
	POW    // **
	DOTS   // ..

	// Comparison operators
	EQ // = or ==
	NE // != or <>
	LT // <
	GT // >
	LE // <=
	GE // >=

	// Punctuation
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	IF        // :-
	WIF       // :~
	AT        // @
	VBAR      // |
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	NOT // not

	// Directives
	PROGRAM  // #program
	SHOW     // #show
	CONST    // #const
	MINIMIZE // #minimize
	MAXIMIZE // #maximize
	COUNT    // #count
	SUM      // #sum
	SUMPLUS  // #sum+
	MIN      // #min
	MAX      // #max
	INF      // #inf
	SUP      // #sup
	TRUE     // #true
	FALSE    // #false
)

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "<EOF>",
	ILLEGAL: "ILLEGAL",

	IDENT:     "<IDENTIFIER>",
	VARIABLE:  "<VARIABLE>",
	ANONYMOUS: "_",
	NUMBER:    "<NUMBER>",
	STRING:    "<STRING>",

	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	BSLASH: "\\",
	POW:    "**",
	DOTS:   "..",

	EQ: "=",
	NE: "!=",
	LT: "<",
	GT: ">",
	LE: "<=",
	GE: ">=",

	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	IF:        ":-",
	WIF:       ":~",
	AT:        "@",
	VBAR:      "|",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",

	NOT: "not",

	PROGRAM:  "#program",
	SHOW:     "#show",
	CONST:    "#const",
	MINIMIZE: "#minimize",
	MAXIMIZE: "#maximize",
	COUNT:    "#count",
	SUM:      "#sum",
	SUMPLUS:  "#sum+",
	MIN:      "#min",
	MAX:      "#max",
	INF:      "#inf",
	SUP:      "#sup",
	TRUE:     "#true",
	FALSE:    "#false",
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     Position // position just past the last byte of the token
}

// keywords maps reserved identifiers to their token types.
var keywords = map[string]TokenType{
	"not": NOT,
}

// directives maps directive names (without the leading '#') to their token types.
var directives = map[string]TokenType{
	"program":  PROGRAM,
	"show":     SHOW,
	"const":    CONST,
	"minimize": MINIMIZE,
	"minimise": MINIMIZE,
	"maximize": MAXIMIZE,
	"maximise": MAXIMIZE,
	"count":    COUNT,
	"sum":      SUM,
	"min":      MIN,
	"max":      MAX,
	"inf":      INF,
	"sup":      SUP,
	"infimum":  INF,
	"supremum": SUP,
	"true":     TRUE,
	"false":    FALSE,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// LookupDirective returns the token type for a '#'-prefixed word.
// The name is given without the '#'. Returns ILLEGAL and false for
// unknown directives.
func LookupDirective(name string) (TokenType, bool) {
	if tok, ok := directives[name]; ok {
		return tok, true
	}
	return ILLEGAL, false
}

// IsComparison returns true if the token type is a comparison operator.
func IsComparison(t TokenType) bool {
	return t >= EQ && t <= GE
}

// IsAggregateFunction returns true if the token starts an aggregate.
func IsAggregateFunction(t TokenType) bool {
	switch t {
	case COUNT, SUM, SUMPLUS, MIN, MAX:
		return true
	}
	return false
}

// IsDirective returns true if the token type is a '#' directive or constant.
func IsDirective(t TokenType) bool {
	return t >= PROGRAM && t <= FALSE
}
