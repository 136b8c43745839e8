package parser

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// Term grammar:
//
//	term     → additive [".." additive]
//	additive → mult (("+"|"-") mult)*
//	mult     → power (("*"|"/"|"\") power)*
//	power    → unary ["**" power]
//	unary    → "-" unary | primary
//	primary  → number | string | variable | "_" | "#inf" | "#sup"
//	         | id ["(" [terms] ")"] | "(" [terms [","]] ")"

// parseTerm parses a term.
func (p *Parser) parseTerm() ast.Term {
	start := p.token
	left := p.parseAdditive()
	if p.failed() || !p.match(token.DOTS) {
		return left
	}
	right := p.parseAdditive()
	return &ast.Interval{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Left: left, Right: right}
}

func (p *Parser) parseAdditive() ast.Term {
	start := p.token
	left := p.parseMultiplicative()
	for !p.failed() && (p.check(token.PLUS) || p.check(token.MINUS)) {
		op := ast.BinaryPlus
		if p.check(token.MINUS) {
			op = ast.BinaryMinus
		}
		p.nextToken()
		right := p.parseMultiplicative()
		left = &ast.BinaryOperation{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Term {
	start := p.token
	left := p.parsePower()
	for !p.failed() {
		var op ast.BinaryOperator
		switch p.token.Type {
		case token.STAR:
			op = ast.BinaryMultiplication
		case token.SLASH:
			op = ast.BinaryDivision
		case token.BSLASH:
			op = ast.BinaryModulo
		default:
			return left
		}
		p.nextToken()
		right := p.parsePower()
		left = &ast.BinaryOperation{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePower() ast.Term {
	start := p.token
	base := p.parseUnary()
	if p.failed() || !p.match(token.POW) {
		return base
	}
	exp := p.parsePower()
	return &ast.BinaryOperation{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Op: ast.BinaryPower, Left: base, Right: exp}
}

func (p *Parser) parseUnary() ast.Term {
	if !p.check(token.MINUS) {
		return p.parsePrimary()
	}
	start := p.token
	p.nextToken()
	arg := p.parseUnary()
	if p.failed() {
		return nil
	}
	info := ast.NodeInfo{Span: p.spanFrom(start)}
	if st, ok := arg.(*ast.SymbolicTerm); ok && st.Symbol.Type() == symbol.Number {
		return &ast.SymbolicTerm{NodeInfo: info, Symbol: symbol.NewNumber(-st.Symbol.Number())}
	}
	return &ast.UnaryOperation{NodeInfo: info, Op: ast.UnaryMinus, Argument: arg}
}

func (p *Parser) parsePrimary() ast.Term {
	start := p.token
	switch p.token.Type {
	case token.NUMBER:
		n, err := strconv.Atoi(p.token.Literal)
		if err != nil {
			p.addError(token.Span{Start: p.token.Pos, End: p.token.End}, fmt.Sprintf(ErrNumberRange, p.token.Literal))
			return nil
		}
		p.nextToken()
		return p.symbolic(start, symbol.NewNumber(n))

	case token.STRING:
		p.nextToken()
		return p.symbolic(start, symbol.NewString(start.Literal))

	case token.INF:
		p.nextToken()
		return p.symbolic(start, symbol.Inf())

	case token.SUP:
		p.nextToken()
		return p.symbolic(start, symbol.Sup())

	case token.VARIABLE, token.ANONYMOUS:
		p.nextToken()
		return &ast.Variable{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: start.Literal}

	case token.IDENT:
		p.nextToken()
		if !p.match(token.LPAREN) {
			return p.symbolic(start, symbol.NewConstant(start.Literal))
		}
		var args []ast.Term
		if !p.check(token.RPAREN) {
			args = p.parseTermList()
		}
		p.expect(token.RPAREN)
		if p.failed() {
			return nil
		}
		if len(args) == 0 {
			return p.symbolic(start, symbol.NewConstant(start.Literal))
		}
		return &ast.Function{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: start.Literal, Arguments: args}

	case token.LPAREN:
		p.nextToken()
		var args []ast.Term
		trailing := false
		for !p.check(token.RPAREN) && !p.failed() {
			args = append(args, p.parseTerm())
			if !p.match(token.COMMA) {
				break
			}
			trailing = p.check(token.RPAREN)
		}
		p.expect(token.RPAREN)
		if p.failed() {
			return nil
		}
		if len(args) == 1 && !trailing {
			return args[0]
		}
		return &ast.Function{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Arguments: args}
	}

	p.unexpected()
	return nil
}

// parseTermList parses term ("," term)*.
func (p *Parser) parseTermList() []ast.Term {
	terms := []ast.Term{p.parseTerm()}
	for !p.failed() && p.match(token.COMMA) {
		terms = append(terms, p.parseTerm())
	}
	return terms
}

func (p *Parser) symbolic(start token.Token, sym symbol.Symbol) *ast.SymbolicTerm {
	return &ast.SymbolicTerm{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Symbol: sym}
}

// isAtomTerm reports whether t has the shape of a predicate atom.
func isAtomTerm(t ast.Term) bool {
	switch t := t.(type) {
	case *ast.Function:
		return t.Name != ""
	case *ast.SymbolicTerm:
		return t.Symbol.Type() == symbol.Function && t.Symbol.Name() != "" && t.Symbol.IsPositive()
	case *ast.UnaryOperation:
		if _, nested := t.Argument.(*ast.UnaryOperation); nested {
			return false
		}
		return isAtomTerm(t.Argument)
	}
	return false
}
