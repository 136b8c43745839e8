package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leapasp/pkg/token"
)

// unterminatedComment is the literal of the ILLEGAL token reported for a
// block comment that is never closed.
const unterminatedComment = "%*"

// Lexer tokenizes program text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected during lexing
	Comments []*token.Comment

	// start of an unterminated block comment, reported as the next token
	openComment *token.Position
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos > len(l.input) {
		return // already at EOF
	}
	if l.readPos > 0 && l.input[l.pos] == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos == len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	if l.openComment != nil {
		pos := *l.openComment
		l.openComment = nil
		return token.Token{
			Type:    token.ILLEGAL,
			Literal: unterminatedComment,
			Pos:     pos,
			End:     token.Position{Line: pos.Line, Column: pos.Column + 2, Offset: pos.Offset + 2},
		}
	}

	pos := l.currentPos()
	tok := l.scan(pos)
	tok.Pos = pos
	// Tokens never span lines, so the end column follows from the length.
	tok.End = token.Position{
		Line:   pos.Line,
		Column: pos.Column + (l.pos - pos.Offset),
		Offset: l.pos,
	}
	return tok
}

func (l *Lexer) scan(pos token.Position) token.Token {
	switch l.ch {
	case 0:
		if l.pos < len(l.input) {
			return l.single(token.ILLEGAL)
		}
		return token.Token{Type: token.EOF}
	case '+':
		return l.single(token.PLUS)
	case '-':
		return l.single(token.MINUS)
	case '*':
		if l.peekChar() == '*' {
			return l.double(token.POW)
		}
		return l.single(token.STAR)
	case '/':
		return l.single(token.SLASH)
	case '\\':
		return l.single(token.BSLASH)
	case '.':
		if l.peekChar() == '.' {
			return l.double(token.DOTS)
		}
		return l.single(token.DOT)
	case '=':
		if l.peekChar() == '=' {
			return l.double(token.EQ)
		}
		return l.single(token.EQ)
	case '!':
		if l.peekChar() == '=' {
			return l.double(token.NE)
		}
		return l.single(token.ILLEGAL)
	case '<':
		switch l.peekChar() {
		case '=':
			return l.double(token.LE)
		case '>':
			return l.double(token.NE)
		}
		return l.single(token.LT)
	case '>':
		if l.peekChar() == '=' {
			return l.double(token.GE)
		}
		return l.single(token.GT)
	case ':':
		switch l.peekChar() {
		case '-':
			return l.double(token.IF)
		case '~':
			return l.double(token.WIF)
		}
		return l.single(token.COLON)
	case ',':
		return l.single(token.COMMA)
	case ';':
		return l.single(token.SEMICOLON)
	case '@':
		return l.single(token.AT)
	case '|':
		return l.single(token.VBAR)
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '{':
		return l.single(token.LBRACE)
	case '}':
		return l.single(token.RBRACE)
	case '[':
		return l.single(token.LBRACKET)
	case ']':
		return l.single(token.RBRACKET)
	case '"':
		return l.readString()
	case '#':
		return l.readDirective()
	}

	switch {
	case isLower(l.ch) || isUpper(l.ch) || l.ch == '_':
		return l.readName()
	case isDigit(l.ch):
		start := l.pos
		for isDigit(l.ch) {
			l.readChar()
		}
		return token.Token{Type: token.NUMBER, Literal: l.input[start:l.pos]}
	}
	return l.illegalRune()
}

// illegalRune consumes the whole UTF-8 sequence at the current position.
func (l *Lexer) illegalRune() token.Token {
	start := l.pos
	_, size := utf8.DecodeRuneInString(l.input[start:])
	for range size {
		l.readChar()
	}
	return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos]}
}

// single consumes one character.
func (l *Lexer) single(t token.TokenType) token.Token {
	lit := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Literal: lit}
}

// double consumes two characters.
func (l *Lexer) double(t token.TokenType) token.Token {
	lit := l.input[l.pos : l.pos+2]
	l.readChar()
	l.readChar()
	return token.Token{Type: t, Literal: lit}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch != '%' {
			return
		}
		if l.peekChar() == '*' {
			l.collectBlockComment()
		} else {
			l.collectLineComment()
		}
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment. An unterminated block
// comment runs to the end of the input and is reported as an ILLEGAL
// token at its start.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '%'
	l.readChar() // skip '*'

	closed := false
	for l.ch != 0 || l.pos < len(l.input) {
		if l.ch == '*' && l.peekChar() == '%' {
			l.readChar() // skip '*'
			l.readChar() // skip '%'
			closed = true
			break
		}
		l.readChar()
	}
	if !closed {
		l.openComment = &startPos
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a double-quoted string literal. The literal of the
// returned token is the unescaped value. Strings may not span lines.
func (l *Lexer) readString() token.Token {
	start := l.pos
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		switch l.ch {
		case '"':
			l.readChar()
			return token.Token{Type: token.STRING, Literal: result.String()}
		case '\\':
			switch l.peekChar() {
			case 'n':
				result.WriteByte('\n')
			case '"', '\\':
				result.WriteByte(l.peekChar())
			default:
				l.readChar()
				return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos]}
			}
			l.readChar()
			l.readChar()
		case '\n':
			return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos]}
		case 0:
			if l.pos >= len(l.input) {
				return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos]}
			}
			result.WriteByte(l.ch)
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readDirective reads '#' followed by a lowercase word. "#sum+" is a
// single token.
func (l *Lexer) readDirective() token.Token {
	start := l.pos
	l.readChar() // skip '#'
	for isLower(l.ch) {
		l.readChar()
	}
	name := l.input[start+1 : l.pos]
	if name == "sum" && l.ch == '+' {
		l.readChar()
		return token.Token{Type: token.SUMPLUS, Literal: "#sum+"}
	}
	t, ok := token.LookupDirective(name)
	if !ok {
		if l.pos == start+1 {
			return token.Token{Type: token.ILLEGAL, Literal: "#"}
		}
		return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos]}
	}
	return token.Token{Type: t, Literal: l.input[start:l.pos]}
}

// readName reads an identifier, a variable or the anonymous variable.
// Leading underscores are allowed; the first letter decides the kind.
func (l *Lexer) readName() token.Token {
	start := l.pos
	for l.ch == '_' {
		l.readChar()
	}
	first := l.ch
	for isLower(l.ch) || isUpper(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '\'' {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	switch {
	case isLower(first):
		return token.Token{Type: token.LookupIdent(lit), Literal: lit}
	case isUpper(first):
		return token.Token{Type: token.VARIABLE, Literal: lit}
	case lit == "_":
		return token.Token{Type: token.ANONYMOUS, Literal: lit}
	}
	return token.Token{Type: token.ILLEGAL, Literal: lit}
}

func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// Tokenize returns all tokens from the input.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
