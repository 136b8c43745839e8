package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// maxSubsetSums bounds the number of candidate values enumerated for a
// #sum assignment aggregate.
const maxSubsetSums = 1 << 16

// grounder instantiates non-ground statements. It first computes the
// set of possibly derivable atoms by a fixpoint that over-approximates
// negation and aggregates, then instantiates every statement against
// that set.
type grounder struct {
	ctx    context.Context
	logger *slog.Logger

	possible *symbol.Set
	byPred   map[string][]symbol.Symbol
	final    bool
	prog     *program
	stmt     ast.Statement // statement being grounded, for diagnostics
}

func newGrounder(ctx context.Context, logger *slog.Logger) *grounder {
	return &grounder{
		ctx:      ctx,
		logger:   logger,
		possible: symbol.NewSet(),
		byPred:   make(map[string][]symbol.Symbol),
	}
}

// ground instantiates stmts into a ground program.
func (g *grounder) ground(stmts []ast.Statement) (*program, error) {
	var rules []*ast.Rule
	prog := &program{index: make(map[string]int)}
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Rule:
			rules = append(rules, s)
		case *ast.ShowSignature:
			prog.hideAtoms = true
			if !s.IsHideAll() {
				prog.signatures = append(prog.signatures, s)
			}
		}
	}

	for iteration := 1; ; iteration++ {
		if err := g.ctx.Err(); err != nil {
			return nil, err
		}
		before := g.possible.Len()
		for _, r := range rules {
			if err := g.groundRule(r); err != nil {
				return nil, err
			}
		}
		if g.possible.Len() == before {
			g.logger.Debug("grounding fixpoint reached", "iterations", iteration, "atoms", before)
			break
		}
	}

	g.final = true
	g.prog = prog
	prog.atoms = g.possible.Sorted()
	for i, a := range prog.atoms {
		prog.index[a.String()] = i
	}

	for _, s := range stmts {
		if err := g.ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch s := s.(type) {
		case *ast.Rule:
			err = g.groundRule(s)
		case *ast.Minimize:
			err = g.groundMinimize(s)
		case *ast.ShowTerm:
			err = g.groundShowTerm(s)
		}
		if err != nil {
			return nil, err
		}
	}
	g.addNegationConstraints()
	prog.priorities = priorities(prog.weaks)
	return prog, nil
}

// ---------- atom table ----------

func predicateKey(name string, arity int, negative bool) string {
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s/%d", sign, name, arity)
}

func symbolKey(s symbol.Symbol) string {
	return predicateKey(s.Name(), s.Arity(), s.IsNegative())
}

// termKey returns the predicate key of an atom pattern.
func termKey(t ast.Term) (string, bool) {
	switch t := t.(type) {
	case *ast.Function:
		return predicateKey(t.Name, len(t.Arguments), false), true
	case *ast.SymbolicTerm:
		if t.Symbol.Type() != symbol.Function {
			return "", false
		}
		return symbolKey(t.Symbol), true
	case *ast.UnaryOperation:
		key, ok := termKey(t.Argument)
		if !ok {
			return "", false
		}
		if strings.HasPrefix(key, "-") {
			return key[1:], true
		}
		return "-" + key, true
	}
	return "", false
}

func (g *grounder) addPossible(s symbol.Symbol) {
	if s.Type() != symbol.Function || s.Name() == "" {
		return
	}
	if g.possible.Add(s) {
		key := symbolKey(s)
		g.byPred[key] = append(g.byPred[key], s)
	}
}

// atomID returns the table index of s, or -1 if s cannot be derived.
func (g *grounder) atomID(s symbol.Symbol) int {
	if g.prog == nil {
		return -1
	}
	if id, ok := g.prog.index[s.String()]; ok {
		return id
	}
	return -1
}

// ---------- errors ----------

// ErrUnsafe is returned when a statement has variables that no positive
// body element binds.
var ErrUnsafe = errors.New("unsafe variables")

func (g *grounder) unsafe(vars []string) error {
	slices.Sort(vars)
	vars = slices.Compact(vars)
	d := &parser.Diagnostic{
		Span:    g.stmt.GetSpan(),
		Message: fmt.Sprintf("unsafe variables in: %s: %s", g.stmt, strings.Join(vars, ", ")),
	}
	return fmt.Errorf("%w: %w", ErrUnsafe, d)
}

// evalOne evaluates t, turning unbound variables into unsafe errors.
func (g *grounder) eval(t ast.Term, b ast.Bindings) ([]symbol.Symbol, error) {
	vals, err := ast.Evaluate(t, b)
	if errors.Is(err, ast.ErrUnboundVariable) {
		return nil, g.unsafe(boundSet(b).missing(ast.Variables(t)))
	}
	return vals, err
}

// ---------- statements ----------

func (g *grounder) planBody(head ast.Head, terms []ast.Term, body []ast.BodyElement) ([]ast.BodyElement, error) {
	globals := ruleGlobals(head, terms, body)
	pl := planner{globals: globals}
	planned, bound, rest := pl.plan(body, make(varSet))
	if len(rest) > 0 {
		var vars []string
		for _, e := range rest {
			vars = append(vars, bound.missing(pl.global(ast.Variables(e)))...)
		}
		return nil, g.unsafe(vars)
	}
	var globalNames []string
	for name := range globals {
		globalNames = append(globalNames, name)
	}
	if missing := bound.missing(globalNames); len(missing) > 0 {
		return nil, g.unsafe(missing)
	}
	return planned, nil
}

func (g *grounder) groundRule(r *ast.Rule) error {
	g.stmt = r
	planned, err := g.planBody(r.Head, nil, r.Body)
	if err != nil {
		return err
	}
	return g.groundBody(planned, ast.Bindings{}, body{}, func(b ast.Bindings, bd body) error {
		return g.emitRule(r.Head, b, bd)
	})
}

func (g *grounder) emitRule(head ast.Head, b ast.Bindings, bd body) error {
	switch h := head.(type) {
	case *ast.Literal:
		return g.emitLiteralHead(h, b, bd)

	case *ast.Disjunction:
		elems, err := g.groundHeadElements(h.Elements, b)
		if err != nil || !g.final {
			return err
		}
		g.prog.rules = append(g.prog.rules, &rule{kind: headDisjunction, elems: elems, body: bd})

	case *ast.Aggregate:
		elems, err := g.groundHeadElements(h.Elements, b)
		if err != nil || !g.final {
			return err
		}
		lower, err := g.groundGuard(h.LeftGuard, b)
		if err != nil {
			return err
		}
		upper, err := g.groundGuard(h.RightGuard, b)
		if err != nil {
			return err
		}
		g.prog.rules = append(g.prog.rules, &rule{kind: headChoice, elems: elems, lower: lower, upper: upper, body: bd})
	}
	return nil
}

func (g *grounder) emitLiteralHead(h *ast.Literal, b ast.Bindings, bd body) error {
	constraint := func(extra ...literal) {
		if !g.final {
			return
		}
		cb := bd
		cb.lits = append(bd.lits[:len(bd.lits):len(bd.lits)], extra...)
		g.prog.rules = append(g.prog.rules, &rule{kind: headNone, body: cb})
	}

	switch a := h.Atom.(type) {
	case *ast.SymbolicAtom:
		syms, err := g.eval(a.Symbol, b)
		if err != nil {
			return err
		}
		for _, s := range syms {
			switch h.Sign {
			case ast.NoSign:
				if !g.final {
					g.addPossible(s)
					continue
				}
				if id := g.atomID(s); id >= 0 {
					g.prog.rules = append(g.prog.rules, &rule{kind: headAtom, elems: []headElement{{atom: id}}, body: bd})
				}
			case ast.Negation:
				// not a :- B.  is  :- B, not not a.
				if id := g.atomID(s); id >= 0 {
					constraint(literal{atom: id, sign: ast.DoubleNegation})
				}
			case ast.DoubleNegation:
				if id := g.atomID(s); id >= 0 {
					constraint(literal{atom: id, sign: ast.Negation})
				} else {
					constraint()
				}
			}
		}

	case *ast.BooleanConstant, *ast.Comparison:
		ok, err := g.evalBuiltin(h, b)
		if err != nil {
			return err
		}
		if !ok {
			constraint()
		}
	}
	return nil
}

// evalBuiltin evaluates a ground boolean constant or comparison literal.
func (g *grounder) evalBuiltin(l *ast.Literal, b ast.Bindings) (bool, error) {
	var result bool
	switch a := l.Atom.(type) {
	case *ast.BooleanConstant:
		result = a.Value
	case *ast.Comparison:
		left, err := g.eval(a.Left, b)
		if err != nil {
			return false, err
		}
		right, err := g.eval(a.Right, b)
		if err != nil {
			return false, err
		}
		for _, lv := range left {
			for _, rv := range right {
				if a.Op.Compare(lv, rv) {
					result = true
				}
			}
		}
	}
	if l.Sign == ast.Negation {
		return !result, nil
	}
	return result, nil
}

func (g *grounder) groundGuard(gd *ast.Guard, b ast.Bindings) (*guard, error) {
	if gd == nil {
		return nil, nil
	}
	vals, err := g.eval(gd.Term, b)
	if err != nil || len(vals) == 0 {
		return nil, err
	}
	return &guard{op: gd.Op, value: vals[0]}, nil
}

// groundHeadElements instantiates the elements of a disjunctive or choice
// head. Element atoms are added to the possible atoms.
func (g *grounder) groundHeadElements(elems []*ast.ConditionalLiteral, b ast.Bindings) ([]headElement, error) {
	var out []headElement
	for _, e := range elems {
		atom, ok := e.Literal.Atom.(*ast.SymbolicAtom)
		if !ok || e.Literal.Sign != ast.NoSign {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, e)
		}
		err := g.groundCondition(e.Condition, b, func(nb ast.Bindings, cond []literal) error {
			syms, err := g.eval(atom.Symbol, nb)
			if err != nil {
				return err
			}
			for _, s := range syms {
				if !g.final {
					g.addPossible(s)
					continue
				}
				if id := g.atomID(s); id >= 0 {
					out = append(out, headElement{atom: id, cond: cond})
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *grounder) groundMinimize(m *ast.Minimize) error {
	g.stmt = m
	terms := append([]ast.Term{m.Weight, m.Priority}, m.Terms...)
	planned, err := g.planBody(nil, terms, m.Body)
	if err != nil {
		return err
	}
	return g.groundBody(planned, ast.Bindings{}, body{}, func(b ast.Bindings, bd body) error {
		weight, err := g.evalSingle(m.Weight, b)
		if err != nil || weight.Type() != symbol.Number {
			return err
		}
		priority, err := g.evalSingle(m.Priority, b)
		if err != nil || priority.Type() != symbol.Number {
			return err
		}
		tuple := make([]symbol.Symbol, 0, len(m.Terms))
		for _, t := range m.Terms {
			v, err := g.evalSingle(t, b)
			if err != nil {
				return err
			}
			tuple = append(tuple, v)
		}
		g.prog.weaks = append(g.prog.weaks, &weak{weight: weight.Number(), priority: priority.Number(), terms: tuple, body: bd})
		return nil
	})
}

// evalSingle evaluates a term expected to denote one value. Undefined
// terms yield a zero symbol of type Infimum.
func (g *grounder) evalSingle(t ast.Term, b ast.Bindings) (symbol.Symbol, error) {
	vals, err := g.eval(t, b)
	if err != nil || len(vals) == 0 {
		return symbol.Symbol{}, err
	}
	return vals[0], nil
}

func (g *grounder) groundShowTerm(s *ast.ShowTerm) error {
	g.stmt = s
	planned, err := g.planBody(nil, []ast.Term{s.Term}, s.Body)
	if err != nil {
		return err
	}
	return g.groundBody(planned, ast.Bindings{}, body{}, func(b ast.Bindings, bd body) error {
		vals, err := g.eval(s.Term, b)
		if err != nil {
			return err
		}
		for _, v := range vals {
			g.prog.shows = append(g.prog.shows, showTerm{term: v, body: bd})
		}
		return nil
	})
}

// addNegationConstraints forbids an atom and its classical negation to
// hold together.
func (g *grounder) addNegationConstraints() {
	for id, a := range g.prog.atoms {
		if !a.IsNegative() {
			continue
		}
		pos, _ := a.Negate()
		if other := g.atomID(pos); other >= 0 {
			g.prog.rules = append(g.prog.rules, &rule{kind: headNone, body: body{lits: []literal{{atom: id}, {atom: other}}}})
		}
	}
}

func priorities(weaks []*weak) []int {
	var out []int
	for _, w := range weaks {
		if !slices.Contains(out, w.priority) {
			out = append(out, w.priority)
		}
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// ---------- bodies ----------

// groundBody enumerates the instances of the planned body elements,
// calling yield with the full bindings and the ground body of each.
func (g *grounder) groundBody(elems []ast.BodyElement, b ast.Bindings, acc body, yield func(ast.Bindings, body) error) error {
	if len(elems) == 0 {
		return yield(b, acc)
	}
	next := func(nb ast.Bindings, nacc body) error {
		return g.groundBody(elems[1:], nb, nacc, yield)
	}

	switch e := elems[0].(type) {
	case *ast.ConditionalLiteral:
		if !g.final {
			return next(b, acc)
		}
		cl, err := g.groundConditionalLiteral(e, b)
		if err != nil {
			return err
		}
		acc.conds = append(acc.conds[:len(acc.conds):len(acc.conds)], cl)
		return next(b, acc)

	case *ast.Literal:
		return g.groundLiteral(e, b, acc, next)
	}
	return next(b, acc)
}

func (g *grounder) groundLiteral(l *ast.Literal, b ast.Bindings, acc body, next func(ast.Bindings, body) error) error {
	switch a := l.Atom.(type) {
	case *ast.SymbolicAtom:
		if l.Sign == ast.NoSign {
			return g.matchAtom(a.Symbol, b, func(nb ast.Bindings, s symbol.Symbol) error {
				nacc := acc
				nacc.lits = appendLit(acc.lits, literal{atom: g.atomID(s)})
				return next(nb, nacc)
			})
		}
		syms, err := g.eval(a.Symbol, b)
		if err != nil {
			return err
		}
		lits := acc.lits
		for _, s := range syms {
			id := -1
			if g.possible.Contains(s) {
				id = g.atomID(s)
			}
			switch {
			case !g.possible.Contains(s) && l.Sign == ast.Negation:
				continue // not a, with a underivable
			case !g.possible.Contains(s):
				if g.final {
					return nil // not not a, with a underivable
				}
				continue
			case g.final:
				lits = appendLit(lits, literal{atom: id, sign: l.Sign})
			}
		}
		acc.lits = lits
		return next(b, acc)

	case *ast.BooleanConstant:
		ok, err := g.evalBuiltin(l, b)
		if err != nil || !ok {
			return err
		}
		return next(b, acc)

	case *ast.Comparison:
		if l.Sign == ast.NoSign && a.Op == ast.Equal {
			bound := boundSet(b)
			switch {
			case !bound.containsAll(ast.Variables(a.Left)):
				return g.assign(a.Left, a.Right, b, acc, next)
			case !bound.containsAll(ast.Variables(a.Right)):
				return g.assign(a.Right, a.Left, b, acc, next)
			}
		}
		ok, err := g.evalBuiltin(l, b)
		if err != nil || !ok {
			return err
		}
		return next(b, acc)

	case *ast.BodyAggregate:
		return g.groundAggregate(l.Sign, a, b, acc, next)
	}
	return next(b, acc)
}

func appendLit(lits []literal, l literal) []literal {
	return append(lits[:len(lits):len(lits)], l)
}

// assign binds the pattern to every value of the ground term.
func (g *grounder) assign(pattern, value ast.Term, b ast.Bindings, acc body, next func(ast.Bindings, body) error) error {
	vals, err := g.eval(value, b)
	if err != nil {
		return err
	}
	for _, v := range vals {
		nb := b.Clone()
		if !ast.Match(pattern, v, nb) {
			continue
		}
		if err := next(nb, acc); err != nil {
			return err
		}
	}
	return nil
}

// matchAtom matches an atom pattern against the possible atoms.
func (g *grounder) matchAtom(pattern ast.Term, b ast.Bindings, fn func(ast.Bindings, symbol.Symbol) error) error {
	key, ok := termKey(pattern)
	if !ok {
		return nil
	}
	// The candidate list may grow while a rule is grounded; iterate over
	// the current length only.
	candidates := g.byPred[key]
	for _, s := range candidates[:len(candidates):len(candidates)] {
		nb := b.Clone()
		if !ast.Match(pattern, s, nb) {
			continue
		}
		if err := fn(nb, s); err != nil {
			return err
		}
	}
	return nil
}

// groundCondition enumerates the instances of a condition (a conjunction
// of literals with local variables).
func (g *grounder) groundCondition(cond []*ast.Literal, b ast.Bindings, yield func(ast.Bindings, []literal) error) error {
	elems := make([]ast.BodyElement, len(cond))
	for i, l := range cond {
		elems[i] = l
	}
	planned, bound, rest := planner{}.plan(elems, boundSet(b))
	if len(rest) > 0 {
		var vars []string
		for _, e := range rest {
			vars = append(vars, bound.missing(ast.Variables(e))...)
		}
		return g.unsafe(vars)
	}
	return g.groundBody(planned, b, body{}, func(nb ast.Bindings, bd body) error {
		return yield(nb, bd.lits)
	})
}

func (g *grounder) groundConditionalLiteral(c *ast.ConditionalLiteral, b ast.Bindings) (*condLiteral, error) {
	cl := &condLiteral{}
	err := g.groundCondition(c.Condition, b, func(nb ast.Bindings, cond []literal) error {
		lits, ok, err := g.groundSimpleLiteral(c.Literal, nb)
		if err != nil {
			return err
		}
		if !ok {
			cl.instances = append(cl.instances, condInstance{lit: falseLiteral, cond: cond})
			return nil
		}
		for _, l := range lits {
			cl.instances = append(cl.instances, condInstance{lit: l, cond: cond})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// falseLiteral refers to no atom and never holds.
var falseLiteral = literal{atom: -1}

// groundSimpleLiteral instantiates a ground atom or builtin literal. It
// reports false if the literal cannot hold; literals that always hold
// are omitted from the result.
func (g *grounder) groundSimpleLiteral(l *ast.Literal, b ast.Bindings) ([]literal, bool, error) {
	a, ok := l.Atom.(*ast.SymbolicAtom)
	if !ok {
		holds, err := g.evalBuiltin(l, b)
		return nil, holds, err
	}
	syms, err := g.eval(a.Symbol, b)
	if err != nil {
		return nil, false, err
	}
	var lits []literal
	for _, s := range syms {
		id := g.atomID(s)
		switch {
		case id < 0 && l.Sign == ast.Negation:
			continue
		case id < 0:
			return nil, false, nil
		}
		lits = append(lits, literal{atom: id, sign: l.Sign})
	}
	return lits, true, nil
}

// ---------- aggregates ----------

func (g *grounder) groundElements(a *ast.BodyAggregate, b ast.Bindings) ([]aggElement, error) {
	var out []aggElement
	for _, e := range a.Elements {
		err := g.groundCondition(e.Condition, b, func(nb ast.Bindings, cond []literal) error {
			tuples := [][]symbol.Symbol{nil}
			for _, t := range e.Terms {
				vals, err := g.eval(t, nb)
				if err != nil {
					return err
				}
				var grown [][]symbol.Symbol
				for _, prefix := range tuples {
					for _, v := range vals {
						grown = append(grown, append(prefix[:len(prefix):len(prefix)], v))
					}
				}
				tuples = grown
			}
			for _, t := range tuples {
				out = append(out, aggElement{tuple: t, cond: cond})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *grounder) groundAggregate(sign ast.Sign, a *ast.BodyAggregate, b ast.Bindings, acc body, next func(ast.Bindings, body) error) error {
	elems, err := g.groundElements(a, b)
	if err != nil {
		return err
	}

	var name string
	if sign == ast.NoSign {
		name, _ = assignmentVariable(a, boundSet(b))
	}

	build := func(nb ast.Bindings) (*aggregate, error) {
		agg := &aggregate{fn: a.Function, sign: sign, elems: elems}
		if agg.left, err = g.groundGuard(a.LeftGuard, nb); err != nil {
			return nil, err
		}
		if agg.right, err = g.groundGuard(a.RightGuard, nb); err != nil {
			return nil, err
		}
		return agg, nil
	}

	if name == "" {
		if !g.final {
			return next(b, acc)
		}
		agg, err := build(b)
		if err != nil {
			return err
		}
		acc.aggs = append(acc.aggs[:len(acc.aggs):len(acc.aggs)], agg)
		return next(b, acc)
	}

	for _, v := range possibleValues(a.Function, elems) {
		nb := b.Clone()
		nb[name] = v
		nacc := acc
		if g.final {
			agg, err := build(nb)
			if err != nil {
				return err
			}
			nacc.aggs = append(acc.aggs[:len(acc.aggs):len(acc.aggs)], agg)
		}
		if err := next(nb, nacc); err != nil {
			return err
		}
	}
	return nil
}

// possibleValues returns the values an aggregate can take over any
// subset of its elements.
func possibleValues(fn ast.AggregateFunction, elems []aggElement) []symbol.Symbol {
	seen := make(map[string]struct{})
	var tuples [][]symbol.Symbol
	for _, e := range elems {
		k := tupleKey(e.tuple)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			tuples = append(tuples, e.tuple)
		}
	}

	var out []symbol.Symbol
	switch fn {
	case ast.AggregateCount:
		for n := 0; n <= len(tuples); n++ {
			out = append(out, symbol.NewNumber(n))
		}
	case ast.AggregateSum, ast.AggregateSumPlus:
		sums := map[int]struct{}{0: {}}
		for _, t := range tuples {
			if len(t) == 0 || t[0].Type() != symbol.Number {
				continue
			}
			w := t[0].Number()
			if fn == ast.AggregateSumPlus && w < 0 {
				continue
			}
			grown := make(map[int]struct{}, 2*len(sums))
			for s := range sums {
				grown[s] = struct{}{}
				grown[s+w] = struct{}{}
			}
			if len(grown) > maxSubsetSums {
				break
			}
			sums = grown
		}
		for s := range sums {
			out = append(out, symbol.NewNumber(s))
		}
	case ast.AggregateMin, ast.AggregateMax:
		set := symbol.NewSet()
		if fn == ast.AggregateMin {
			set.Add(symbol.Sup())
		} else {
			set.Add(symbol.Inf())
		}
		for _, t := range tuples {
			if len(t) > 0 {
				set.Add(t[0])
			}
		}
		out = set.Items()
	}
	symbol.Sort(out)
	return out
}
