package parser

import (
	"testing"

	"github.com/leapstack-labs/leapasp/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(input string) []token.TokenType {
	var types []token.TokenType
	for _, tok := range Tokenize(input) {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.TokenType
	}{
		{
			name:     "rule",
			input:    "p(X) :- not q(X,_).",
			expected: []token.TokenType{token.IDENT, token.LPAREN, token.VARIABLE, token.RPAREN, token.IF, token.NOT, token.IDENT, token.LPAREN, token.VARIABLE, token.COMMA, token.ANONYMOUS, token.RPAREN, token.DOT, token.EOF},
		},
		{
			name:     "comparisons",
			input:    "= == != <> < <= > >=",
			expected: []token.TokenType{token.EQ, token.EQ, token.NE, token.NE, token.LT, token.LE, token.GT, token.GE, token.EOF},
		},
		{
			name:     "arithmetic",
			input:    "1+2-3*4/5\\6**7..8",
			expected: []token.TokenType{token.NUMBER, token.PLUS, token.NUMBER, token.MINUS, token.NUMBER, token.STAR, token.NUMBER, token.SLASH, token.NUMBER, token.BSLASH, token.NUMBER, token.POW, token.NUMBER, token.DOTS, token.NUMBER, token.EOF},
		},
		{
			name:     "directives",
			input:    "#show #sum+ #sum #count #inf #supremum #false",
			expected: []token.TokenType{token.SHOW, token.SUMPLUS, token.SUM, token.COUNT, token.INF, token.SUP, token.FALSE, token.EOF},
		},
		{
			name:     "weak constraint",
			input:    ":~ a. [1@2]",
			expected: []token.TokenType{token.WIF, token.IDENT, token.DOT, token.LBRACKET, token.NUMBER, token.AT, token.NUMBER, token.RBRACKET, token.EOF},
		},
		{
			name:     "comments",
			input:    "a. % line\n%* block\n *% b.",
			expected: []token.TokenType{token.IDENT, token.DOT, token.IDENT, token.DOT, token.EOF},
		},
		{
			name:     "underscore names",
			input:    "__number _X _",
			expected: []token.TokenType{token.IDENT, token.VARIABLE, token.ANONYMOUS, token.EOF},
		},
		{
			name:     "unterminated block comment",
			input:    "a. %* b.",
			expected: []token.TokenType{token.IDENT, token.DOT, token.ILLEGAL, token.EOF},
		},
		{
			name:     "illegal",
			input:    "$ #bogus",
			expected: []token.TokenType{token.ILLEGAL, token.ILLEGAL, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenTypes(tt.input))
		})
	}
}

func TestLexer_String(t *testing.T) {
	toks := Tokenize(`"a\"b\\c\n"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\"b\\c\n", toks[0].Literal)

	toks = Tokenize(`"open`)
	assert.Equal(t, token.ILLEGAL, toks[0].Type)
}

func TestLexer_IllegalRune(t *testing.T) {
	toks := Tokenize("é.")
	require.Len(t, toks, 3)
	assert.Equal(t, token.ILLEGAL, toks[0].Type)
	assert.Equal(t, "é", toks[0].Literal)
	assert.Equal(t, token.DOT, toks[1].Type)
}

func TestLexer_Positions(t *testing.T) {
	toks := Tokenize("a.\n  bc(1).")
	require.GreaterOrEqual(t, len(toks), 4)

	bc := toks[2]
	assert.Equal(t, "bc", bc.Literal)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 5}, bc.Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 5, Offset: 7}, bc.End)

	eof := toks[len(toks)-1]
	assert.Equal(t, token.EOF, eof.Type)
	assert.Equal(t, 2, eof.Pos.Line)
	assert.Equal(t, 9, eof.Pos.Column)
}

func TestLexer_Comments(t *testing.T) {
	l := NewLexer("% one\na. %* two *%")
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
	}
	require.Len(t, l.Comments, 2)
	assert.True(t, l.Comments[0].IsLineComment())
	assert.Equal(t, "% one", l.Comments[0].Text)
	assert.True(t, l.Comments[1].IsBlockComment())
	assert.Equal(t, "%* two *%", l.Comments[1].Text)
}
