package ast

// TermMapper returns a replacement for a term, or false to keep the term
// (and descend into it).
type TermMapper func(Term) (Term, bool)

func keepTerms(Term) (Term, bool) { return nil, false }

// Clone returns a deep copy of node.
func Clone[T Node](node T) T {
	return RewriteTerms(node, keepTerms)
}

// RewriteTerms returns a deep copy of node in which every term for which
// fn reports a replacement is substituted. Replacements are not
// descended into.
func RewriteTerms[T Node](node T, fn TermMapper) T {
	r := rewriter{fn: fn}
	return r.node(node).(T)
}

// SubstituteVariables replaces every variable named in bindings with a
// deep copy of the bound term. Unbound variables are left untouched.
func SubstituteVariables[T Node](node T, bindings map[string]Term) T {
	return RewriteTerms(node, func(t Term) (Term, bool) {
		v, ok := t.(*Variable)
		if !ok {
			return nil, false
		}
		repl, ok := bindings[v.Name]
		if !ok {
			return nil, false
		}
		return Clone(repl), true
	})
}

type rewriter struct {
	fn TermMapper
}

func (r rewriter) node(n Node) Node {
	switch n := n.(type) {
	case Term:
		return r.term(n)
	case Atom:
		return r.atom(n)
	case *Literal:
		return r.literal(n)
	case *ConditionalLiteral:
		return r.condLiteral(n)
	case Head:
		return r.head(n)
	case Statement:
		return r.statement(n)
	}
	return n
}

func (r rewriter) term(t Term) Term {
	if t == nil {
		return nil
	}
	if repl, ok := r.fn(t); ok {
		return repl
	}
	switch t := t.(type) {
	case *SymbolicTerm:
		c := *t
		return &c
	case *Variable:
		c := *t
		return &c
	case *UnaryOperation:
		return &UnaryOperation{NodeInfo: t.NodeInfo, Op: t.Op, Argument: r.term(t.Argument)}
	case *BinaryOperation:
		return &BinaryOperation{NodeInfo: t.NodeInfo, Op: t.Op, Left: r.term(t.Left), Right: r.term(t.Right)}
	case *Interval:
		return &Interval{NodeInfo: t.NodeInfo, Left: r.term(t.Left), Right: r.term(t.Right)}
	case *Function:
		return &Function{NodeInfo: t.NodeInfo, Name: t.Name, Arguments: r.terms(t.Arguments)}
	}
	return t
}

func (r rewriter) terms(ts []Term) []Term {
	if ts == nil {
		return nil
	}
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = r.term(t)
	}
	return out
}

func (r rewriter) guard(g *Guard) *Guard {
	if g == nil {
		return nil
	}
	return &Guard{Op: g.Op, Term: r.term(g.Term)}
}

func (r rewriter) atom(a Atom) Atom {
	switch a := a.(type) {
	case *SymbolicAtom:
		return &SymbolicAtom{NodeInfo: a.NodeInfo, Symbol: r.term(a.Symbol)}
	case *Comparison:
		return &Comparison{NodeInfo: a.NodeInfo, Op: a.Op, Left: r.term(a.Left), Right: r.term(a.Right)}
	case *BooleanConstant:
		c := *a
		return &c
	case *BodyAggregate:
		elems := make([]*BodyAggregateElement, len(a.Elements))
		for i, e := range a.Elements {
			elems[i] = &BodyAggregateElement{Terms: r.terms(e.Terms), Condition: r.literals(e.Condition)}
		}
		return &BodyAggregate{
			NodeInfo:   a.NodeInfo,
			Function:   a.Function,
			Elements:   elems,
			LeftGuard:  r.guard(a.LeftGuard),
			RightGuard: r.guard(a.RightGuard),
		}
	}
	return a
}

func (r rewriter) literal(l *Literal) *Literal {
	if l == nil {
		return nil
	}
	return &Literal{NodeInfo: l.NodeInfo, Sign: l.Sign, Atom: r.atom(l.Atom)}
}

func (r rewriter) literals(ls []*Literal) []*Literal {
	if ls == nil {
		return nil
	}
	out := make([]*Literal, len(ls))
	for i, l := range ls {
		out[i] = r.literal(l)
	}
	return out
}

func (r rewriter) condLiteral(c *ConditionalLiteral) *ConditionalLiteral {
	return &ConditionalLiteral{NodeInfo: c.NodeInfo, Literal: r.literal(c.Literal), Condition: r.literals(c.Condition)}
}

func (r rewriter) condLiterals(cs []*ConditionalLiteral) []*ConditionalLiteral {
	out := make([]*ConditionalLiteral, len(cs))
	for i, c := range cs {
		out[i] = r.condLiteral(c)
	}
	return out
}

func (r rewriter) head(h Head) Head {
	switch h := h.(type) {
	case *Literal:
		return r.literal(h)
	case *Disjunction:
		return &Disjunction{NodeInfo: h.NodeInfo, Elements: r.condLiterals(h.Elements)}
	case *Aggregate:
		return &Aggregate{
			NodeInfo:   h.NodeInfo,
			LeftGuard:  r.guard(h.LeftGuard),
			Elements:   r.condLiterals(h.Elements),
			RightGuard: r.guard(h.RightGuard),
		}
	}
	return h
}

func (r rewriter) body(body []BodyElement) []BodyElement {
	if body == nil {
		return nil
	}
	out := make([]BodyElement, len(body))
	for i, e := range body {
		switch e := e.(type) {
		case *Literal:
			out[i] = r.literal(e)
		case *ConditionalLiteral:
			out[i] = r.condLiteral(e)
		default:
			out[i] = e
		}
	}
	return out
}

func (r rewriter) statement(s Statement) Statement {
	switch s := s.(type) {
	case *Program:
		c := *s
		c.Parameters = append([]string(nil), s.Parameters...)
		return &c
	case *Rule:
		return &Rule{NodeInfo: s.NodeInfo, Head: r.head(s.Head), Body: r.body(s.Body)}
	case *ShowSignature:
		c := *s
		return &c
	case *ShowTerm:
		return &ShowTerm{NodeInfo: s.NodeInfo, Term: r.term(s.Term), Body: r.body(s.Body)}
	case *Minimize:
		return &Minimize{
			NodeInfo: s.NodeInfo,
			Weight:   r.term(s.Weight),
			Priority: r.term(s.Priority),
			Terms:    r.terms(s.Terms),
			Body:     r.body(s.Body),
		}
	case *Definition:
		return &Definition{NodeInfo: s.NodeInfo, Name: s.Name, Value: r.term(s.Value), IsDefault: s.IsDefault}
	}
	return s
}
