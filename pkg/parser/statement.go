package parser

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// parseStatement parses one statement up to and including its
// terminating "." (or "]" for weak constraints and annotated #const).
// #minimize and #maximize yield one statement per element.
func (p *Parser) parseStatement() []ast.Statement {
	start := p.token
	var stmt ast.Statement

	switch p.token.Type {
	case token.IF:
		p.nextToken()
		head := &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Atom: &ast.BooleanConstant{}}
		body := p.parseOptionalBody()
		p.expect(token.DOT)
		stmt = &ast.Rule{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Head: head, Body: body}

	case token.WIF:
		stmt = p.parseWeakConstraint()

	case token.PROGRAM:
		stmt = p.parseProgramDirective()

	case token.SHOW:
		stmt = p.parseShow()

	case token.CONST:
		stmt = p.parseConst()

	case token.MINIMIZE, token.MAXIMIZE:
		return p.parseOptimize()

	default:
		head := p.parseHead()
		var body []ast.BodyElement
		if !p.failed() && p.match(token.IF) {
			body = p.parseOptionalBody()
		}
		p.expect(token.DOT)
		stmt = &ast.Rule{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Head: head, Body: body}
	}

	if p.failed() {
		return nil
	}
	return []ast.Statement{stmt}
}

// ---------- Heads ----------

// parseHead parses a literal, disjunctive or choice head.
func (p *Parser) parseHead() ast.Head {
	start := p.token

	if p.check(token.LBRACE) {
		return p.parseChoice(start, nil)
	}

	var lit *ast.Literal
	if p.check(token.NOT) || p.check(token.TRUE) || p.check(token.FALSE) {
		lit = p.parseLiteral()
	} else {
		t := p.parseTerm()
		if p.failed() {
			return nil
		}
		switch {
		case token.IsComparison(p.token.Type) && p.peek.Type == token.LBRACE:
			op := comparisonOperator(p.token.Type)
			p.nextToken()
			return p.parseChoice(start, &ast.Guard{Op: op, Term: t})
		case p.check(token.LBRACE):
			return p.parseChoice(start, &ast.Guard{Op: ast.LessEqual, Term: t})
		}
		lit = p.finishLiteral(start, ast.NoSign, t)
	}
	if p.failed() {
		return nil
	}

	first := p.parseConditional(start, lit)
	if !p.check(token.SEMICOLON) && !p.check(token.VBAR) {
		if cond, ok := first.(*ast.ConditionalLiteral); ok {
			return &ast.Disjunction{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Elements: []*ast.ConditionalLiteral{cond}}
		}
		return lit
	}

	elems := []*ast.ConditionalLiteral{asConditional(first)}
	for !p.failed() && (p.match(token.SEMICOLON) || p.match(token.VBAR)) {
		elemStart := p.token
		l := p.parseLiteral()
		if p.failed() {
			return nil
		}
		elems = append(elems, asConditional(p.parseConditional(elemStart, l)))
	}
	return &ast.Disjunction{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Elements: elems}
}

// parseChoice parses "{ condlit (; condlit)* } [[cmp] term]"; the left
// guard, if any, has been consumed.
func (p *Parser) parseChoice(start token.Token, left *ast.Guard) ast.Head {
	p.expect(token.LBRACE)
	var elems []*ast.ConditionalLiteral
	for !p.failed() && !p.check(token.RBRACE) {
		elemStart := p.token
		lit := p.parseLiteral()
		if p.failed() {
			return nil
		}
		elems = append(elems, asConditional(p.parseConditional(elemStart, lit)))
		if !p.match(token.SEMICOLON) {
			break
		}
	}
	p.expect(token.RBRACE)

	var right *ast.Guard
	switch {
	case token.IsComparison(p.token.Type):
		op := comparisonOperator(p.token.Type)
		p.nextToken()
		right = &ast.Guard{Op: op, Term: p.parseTerm()}
	case p.check(token.NUMBER) || p.check(token.VARIABLE):
		right = &ast.Guard{Op: ast.LessEqual, Term: p.parseTerm()}
	}
	if p.failed() {
		return nil
	}
	return &ast.Aggregate{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, LeftGuard: left, Elements: elems, RightGuard: right}
}

// ---------- Literals ----------

// parseSign parses an optional "not" or "not not" prefix.
func (p *Parser) parseSign() ast.Sign {
	if !p.match(token.NOT) {
		return ast.NoSign
	}
	if p.match(token.NOT) {
		return ast.DoubleNegation
	}
	return ast.Negation
}

// parseLiteral parses a literal without aggregates: an atom, a
// comparison, or a boolean constant, with an optional sign.
func (p *Parser) parseLiteral() *ast.Literal {
	start := p.token
	sign := p.parseSign()
	if p.check(token.TRUE) || p.check(token.FALSE) {
		value := p.check(token.TRUE)
		p.nextToken()
		return &ast.Literal{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Sign:     sign,
			Atom:     &ast.BooleanConstant{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Value: value},
		}
	}
	t := p.parseTerm()
	if p.failed() {
		return nil
	}
	return p.finishLiteral(start, sign, t)
}

// finishLiteral turns an already parsed term into a comparison or atom
// literal.
func (p *Parser) finishLiteral(start token.Token, sign ast.Sign, t ast.Term) *ast.Literal {
	var atom ast.Atom
	if token.IsComparison(p.token.Type) {
		op := comparisonOperator(p.token.Type)
		p.nextToken()
		right := p.parseTerm()
		if p.failed() {
			return nil
		}
		atom = &ast.Comparison{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Op: op, Left: t, Right: right}
	} else {
		if !isAtomTerm(t) {
			p.unexpected()
			return nil
		}
		atom = &ast.SymbolicAtom{NodeInfo: ast.NodeInfo{Span: t.GetSpan()}, Symbol: t}
	}
	return &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Sign: sign, Atom: atom}
}

// parseConditional parses an optional ": lit, lit" condition after lit.
// It returns lit itself when no condition follows.
func (p *Parser) parseConditional(start token.Token, lit *ast.Literal) ast.BodyElement {
	if !p.match(token.COLON) {
		return lit
	}
	cond := p.parseCondition()
	return &ast.ConditionalLiteral{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Literal: lit, Condition: cond}
}

// parseCondition parses literal ("," literal)*. An empty condition is
// allowed.
func (p *Parser) parseCondition() []*ast.Literal {
	if p.atConditionEnd() {
		return nil
	}
	var lits []*ast.Literal
	for !p.failed() {
		lits = append(lits, p.parseLiteral())
		if !p.match(token.COMMA) {
			break
		}
	}
	return lits
}

func (p *Parser) atConditionEnd() bool {
	switch p.token.Type {
	case token.SEMICOLON, token.DOT, token.RBRACE, token.VBAR, token.IF:
		return true
	}
	return false
}

func asConditional(e ast.BodyElement) *ast.ConditionalLiteral {
	if c, ok := e.(*ast.ConditionalLiteral); ok {
		return c
	}
	lit := e.(*ast.Literal)
	return &ast.ConditionalLiteral{NodeInfo: lit.NodeInfo, Literal: lit}
}

// ---------- Bodies ----------

// parseOptionalBody parses a body, which may be empty before ".".
func (p *Parser) parseOptionalBody() []ast.BodyElement {
	if p.check(token.DOT) {
		return nil
	}
	return p.parseBody()
}

// parseBody parses element ((";"|",") element)*.
func (p *Parser) parseBody() []ast.BodyElement {
	var body []ast.BodyElement
	for !p.failed() {
		body = append(body, p.parseBodyElement())
		if !p.match(token.SEMICOLON) && !p.match(token.COMMA) {
			break
		}
	}
	return body
}

// parseBodyElement parses a literal, aggregate or conditional literal.
func (p *Parser) parseBodyElement() ast.BodyElement {
	start := p.token
	sign := p.parseSign()
	atomStart := p.token

	var lit *ast.Literal
	switch {
	case token.IsAggregateFunction(p.token.Type):
		agg := p.parseBodyAggregate(atomStart, nil)
		lit = &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Sign: sign, Atom: agg}

	case p.check(token.TRUE) || p.check(token.FALSE):
		value := p.check(token.TRUE)
		p.nextToken()
		lit = &ast.Literal{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Sign:     sign,
			Atom:     &ast.BooleanConstant{NodeInfo: ast.NodeInfo{Span: p.spanFrom(atomStart)}, Value: value},
		}

	default:
		t := p.parseTerm()
		if p.failed() {
			return nil
		}
		if token.IsComparison(p.token.Type) && token.IsAggregateFunction(p.peek.Type) {
			op := comparisonOperator(p.token.Type)
			p.nextToken()
			agg := p.parseBodyAggregate(atomStart, &ast.Guard{Op: op, Term: t})
			lit = &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Sign: sign, Atom: agg}
		} else {
			lit = p.finishLiteral(start, sign, t)
		}
	}
	if p.failed() {
		return nil
	}
	return p.parseConditional(start, lit)
}

// parseBodyAggregate parses "aggfn { elem (; elem)* } [cmp term]".
func (p *Parser) parseBodyAggregate(start token.Token, left *ast.Guard) *ast.BodyAggregate {
	fn := aggregateFunction(p.token.Type)
	p.nextToken()
	p.expect(token.LBRACE)

	var elems []*ast.BodyAggregateElement
	for !p.failed() && !p.check(token.RBRACE) {
		elem := &ast.BodyAggregateElement{}
		if !p.check(token.COLON) {
			elem.Terms = p.parseTermList()
		}
		if p.match(token.COLON) {
			elem.Condition = p.parseCondition()
		}
		elems = append(elems, elem)
		if !p.match(token.SEMICOLON) {
			break
		}
	}
	p.expect(token.RBRACE)

	var right *ast.Guard
	if !p.failed() && token.IsComparison(p.token.Type) {
		op := comparisonOperator(p.token.Type)
		p.nextToken()
		right = &ast.Guard{Op: op, Term: p.parseTerm()}
	}
	if p.failed() {
		return nil
	}
	return &ast.BodyAggregate{
		NodeInfo:   ast.NodeInfo{Span: p.spanFrom(start)},
		Function:   fn,
		Elements:   elems,
		LeftGuard:  left,
		RightGuard: right,
	}
}

// ---------- Directives ----------

// parseWeakConstraint parses ":~ body. [weight@priority, terms]".
func (p *Parser) parseWeakConstraint() ast.Statement {
	start := p.token
	p.nextToken()
	body := p.parseOptionalBody()
	p.expect(token.DOT)
	p.expect(token.LBRACKET)
	if p.failed() {
		return nil
	}
	weight, priority, terms := p.parseWeightTuple()
	p.expect(token.RBRACKET)
	return &ast.Minimize{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Weight:   weight,
		Priority: priority,
		Terms:    terms,
		Body:     body,
	}
}

// parseWeightTuple parses "weight[@priority] (, term)*".
func (p *Parser) parseWeightTuple() (weight, priority ast.Term, terms []ast.Term) {
	weight = p.parseTerm()
	if p.match(token.AT) {
		priority = p.parseTerm()
	} else {
		priority = &ast.SymbolicTerm{Symbol: symbol.NewNumber(0)}
	}
	for !p.failed() && p.match(token.COMMA) {
		terms = append(terms, p.parseTerm())
	}
	return weight, priority, terms
}

// parseOptimize parses "#minimize { w@p,t : cond; ... }." and its
// #maximize counterpart, whose weights are negated.
func (p *Parser) parseOptimize() []ast.Statement {
	start := p.token
	maximize := p.check(token.MAXIMIZE)
	p.nextToken()
	p.expect(token.LBRACE)

	type element struct {
		weight, priority ast.Term
		terms            []ast.Term
		cond             []*ast.Literal
	}
	var elems []element
	for !p.failed() && !p.check(token.RBRACE) {
		var e element
		e.weight, e.priority, e.terms = p.parseWeightTuple()
		if p.match(token.COLON) {
			e.cond = p.parseCondition()
		}
		elems = append(elems, e)
		if !p.match(token.SEMICOLON) {
			break
		}
	}
	p.expect(token.RBRACE)
	p.expect(token.DOT)
	if p.failed() {
		return nil
	}

	span := p.spanFrom(start)
	stmts := make([]ast.Statement, 0, len(elems))
	for _, e := range elems {
		weight := e.weight
		if maximize {
			weight = negateTerm(weight)
		}
		body := make([]ast.BodyElement, len(e.cond))
		for i, l := range e.cond {
			body[i] = l
		}
		stmts = append(stmts, &ast.Minimize{
			NodeInfo: ast.NodeInfo{Span: span},
			Weight:   weight,
			Priority: e.priority,
			Terms:    e.terms,
			Body:     body,
		})
	}
	return stmts
}

func negateTerm(t ast.Term) ast.Term {
	if st, ok := t.(*ast.SymbolicTerm); ok && st.Symbol.Type() == symbol.Number {
		return &ast.SymbolicTerm{NodeInfo: st.NodeInfo, Symbol: symbol.NewNumber(-st.Symbol.Number())}
	}
	return &ast.UnaryOperation{NodeInfo: ast.NodeInfo{Span: t.GetSpan()}, Op: ast.UnaryMinus, Argument: t}
}

// parseProgramDirective parses "#program name[(params)].".
func (p *Parser) parseProgramDirective() ast.Statement {
	start := p.token
	p.nextToken()
	name := p.token.Literal
	if !p.expect(token.IDENT) {
		return nil
	}
	var params []string
	if p.match(token.LPAREN) {
		for !p.failed() {
			params = append(params, p.token.Literal)
			p.expect(token.IDENT)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	p.expect(token.DOT)
	return &ast.Program{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: name, Parameters: params}
}

// parseShow parses "#show.", "#show [-]name/arity." and "#show term [: body].".
func (p *Parser) parseShow() ast.Statement {
	start := p.token
	p.nextToken()

	if p.match(token.DOT) {
		return &ast.ShowSignature{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}}
	}

	isSignature := p.check(token.IDENT) && p.peek.Type == token.SLASH && p.peek2.Type == token.NUMBER
	negative := p.check(token.MINUS) && p.peek.Type == token.IDENT && p.peek2.Type == token.SLASH
	if isSignature || negative {
		p.match(token.MINUS)
		name := p.token.Literal
		p.nextToken() // name
		p.expect(token.SLASH)
		arity, err := strconv.Atoi(p.token.Literal)
		if err != nil && p.check(token.NUMBER) {
			p.addError(token.Span{Start: p.token.Pos, End: p.token.End}, fmt.Sprintf(ErrNumberRange, p.token.Literal))
		}
		p.expect(token.NUMBER)
		p.expect(token.DOT)
		return &ast.ShowSignature{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: name, Arity: arity, Positive: !negative}
	}

	term := p.parseTerm()
	var body []ast.BodyElement
	if !p.failed() && p.match(token.COLON) {
		body = p.parseOptionalBody()
	}
	p.expect(token.DOT)
	return &ast.ShowTerm{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Term: term, Body: body}
}

// parseConst parses "#const name = term. [default|override]".
func (p *Parser) parseConst() ast.Statement {
	start := p.token
	p.nextToken()
	name := p.token.Literal
	p.expect(token.IDENT)
	p.expect(token.EQ)
	value := p.parseTerm()
	p.expect(token.DOT)

	isDefault := true
	if !p.failed() && p.check(token.LBRACKET) && p.peek.Type == token.IDENT &&
		(p.peek.Literal == "default" || p.peek.Literal == "override") {
		p.nextToken()
		isDefault = p.token.Literal == "default"
		p.nextToken()
		p.expect(token.RBRACKET)
	}
	return &ast.Definition{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: name, Value: value, IsDefault: isDefault}
}

// ---------- Operator tables ----------

func comparisonOperator(t token.TokenType) ast.ComparisonOperator {
	switch t {
	case token.NE:
		return ast.NotEqual
	case token.LT:
		return ast.LessThan
	case token.LE:
		return ast.LessEqual
	case token.GT:
		return ast.GreaterThan
	case token.GE:
		return ast.GreaterEqual
	}
	return ast.Equal
}

func aggregateFunction(t token.TokenType) ast.AggregateFunction {
	switch t {
	case token.SUM:
		return ast.AggregateSum
	case token.SUMPLUS:
		return ast.AggregateSumPlus
	case token.MIN:
		return ast.AggregateMin
	case token.MAX:
		return ast.AggregateMax
	}
	return ast.AggregateCount
}
