package ast

import (
	"errors"
	"fmt"
	"maps"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// ErrUnboundVariable is returned when a term is evaluated with a free variable.
var ErrUnboundVariable = errors.New("unbound variable")

// Bindings maps variable names to ground values.
type Bindings map[string]symbol.Symbol

// Clone returns a copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b)+2)
	maps.Copy(out, b)
	return out
}

// Evaluate computes the ground values denoted by t under b. Intervals and
// pooled arguments denote several values; undefined arithmetic (division
// by zero, operations on non-numbers) denotes none.
func Evaluate(t Term, b Bindings) ([]symbol.Symbol, error) {
	switch t := t.(type) {
	case *SymbolicTerm:
		return []symbol.Symbol{t.Symbol}, nil

	case *Variable:
		if v, ok := b[t.Name]; ok && t.Name != "_" {
			return []symbol.Symbol{v}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnboundVariable, t.Name)

	case *UnaryOperation:
		args, err := Evaluate(t.Argument, b)
		if err != nil {
			return nil, err
		}
		out := args[:0:0]
		for _, a := range args {
			if neg, ok := a.Negate(); ok {
				out = append(out, neg)
			}
		}
		return out, nil

	case *BinaryOperation:
		left, err := Evaluate(t.Left, b)
		if err != nil {
			return nil, err
		}
		right, err := Evaluate(t.Right, b)
		if err != nil {
			return nil, err
		}
		var out []symbol.Symbol
		for _, l := range left {
			for _, r := range right {
				if v, ok := applyBinary(t.Op, l, r); ok {
					out = append(out, v)
				}
			}
		}
		return out, nil

	case *Interval:
		left, err := Evaluate(t.Left, b)
		if err != nil {
			return nil, err
		}
		right, err := Evaluate(t.Right, b)
		if err != nil {
			return nil, err
		}
		var out []symbol.Symbol
		for _, l := range left {
			for _, r := range right {
				if l.Type() != symbol.Number || r.Type() != symbol.Number {
					continue
				}
				for n := l.Number(); n <= r.Number(); n++ {
					out = append(out, symbol.NewNumber(n))
				}
			}
		}
		return out, nil

	case *Function:
		combos := [][]symbol.Symbol{nil}
		for _, arg := range t.Arguments {
			vals, err := Evaluate(arg, b)
			if err != nil {
				return nil, err
			}
			next := make([][]symbol.Symbol, 0, len(combos)*len(vals))
			for _, c := range combos {
				for _, v := range vals {
					next = append(next, append(c[:len(c):len(c)], v))
				}
			}
			combos = next
		}
		out := make([]symbol.Symbol, len(combos))
		for i, c := range combos {
			out[i] = symbol.NewFunction(t.Name, c, true)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot evaluate %T", t)
}

func applyBinary(op BinaryOperator, l, r symbol.Symbol) (symbol.Symbol, bool) {
	if l.Type() != symbol.Number || r.Type() != symbol.Number {
		return symbol.Symbol{}, false
	}
	a, c := l.Number(), r.Number()
	switch op {
	case BinaryPlus:
		return symbol.NewNumber(a + c), true
	case BinaryMinus:
		return symbol.NewNumber(a - c), true
	case BinaryMultiplication:
		return symbol.NewNumber(a * c), true
	case BinaryDivision:
		if c == 0 {
			return symbol.Symbol{}, false
		}
		return symbol.NewNumber(a / c), true
	case BinaryModulo:
		if c == 0 {
			return symbol.Symbol{}, false
		}
		return symbol.NewNumber(a % c), true
	case BinaryPower:
		return power(a, c)
	}
	return symbol.Symbol{}, false
}

func power(base, exp int) (symbol.Symbol, bool) {
	if exp < 0 {
		switch base {
		case 0:
			return symbol.Symbol{}, false
		case 1:
			return symbol.NewNumber(1), true
		case -1:
			if exp%2 == 0 {
				return symbol.NewNumber(1), true
			}
			return symbol.NewNumber(-1), true
		}
		return symbol.NewNumber(0), true
	}
	result := 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return symbol.NewNumber(result), true
}

// Compare evaluates a comparison operator on two ground values using the
// total order of symbols.
func (op ComparisonOperator) Compare(l, r symbol.Symbol) bool {
	c := symbol.Compare(l, r)
	switch op {
	case Equal:
		return c == 0
	case NotEqual:
		return c != 0
	case LessThan:
		return c < 0
	case LessEqual:
		return c <= 0
	case GreaterThan:
		return c > 0
	case GreaterEqual:
		return c >= 0
	}
	return false
}

// Match unifies the pattern t with the ground value s, extending b. It
// reports false if they do not unify. b is modified only on success
// paths; callers pass a clone when they need to backtrack.
func Match(t Term, s symbol.Symbol, b Bindings) bool {
	switch t := t.(type) {
	case *Variable:
		if t.Name == "_" {
			return true
		}
		if v, ok := b[t.Name]; ok {
			return v.Equal(s)
		}
		b[t.Name] = s
		return true

	case *SymbolicTerm:
		return t.Symbol.Equal(s)

	case *Function:
		if s.Type() != symbol.Function || !s.IsPositive() ||
			s.Name() != t.Name || s.Arity() != len(t.Arguments) {
			return false
		}
		for i, arg := range t.Arguments {
			if !Match(arg, s.Argument(i), b) {
				return false
			}
		}
		return true

	case *UnaryOperation:
		if !IsGround(t.Argument, b) {
			if s.Type() != symbol.Function || !s.IsNegative() {
				return false
			}
			pos, _ := s.Negate()
			return Match(t.Argument, pos, b)
		}
	}

	if !IsGround(t, b) {
		return false
	}
	vals, err := Evaluate(t, b)
	if err != nil {
		return false
	}
	for _, v := range vals {
		if v.Equal(s) {
			return true
		}
	}
	return false
}

// IsGround reports whether every variable of t is bound in b.
func IsGround(t Term, b Bindings) bool {
	ground := true
	Walk(t, func(n any) bool {
		if v, ok := n.(*Variable); ok {
			if _, bound := b[v.Name]; !bound || v.Name == "_" {
				ground = false
			}
		}
		return ground
	})
	return ground
}

// BindableVariables returns the variables of t that Match can bind: those
// reachable through function arguments and classical negation only.
func BindableVariables(t Term) []string {
	seen := make(map[string]struct{})
	var visit func(Term)
	visit = func(t Term) {
		switch t := t.(type) {
		case *Variable:
			if t.Name != "_" {
				seen[t.Name] = struct{}{}
			}
		case *Function:
			for _, a := range t.Arguments {
				visit(a)
			}
		case *UnaryOperation:
			if _, ok := t.Argument.(*Function); ok {
				visit(t.Argument)
			}
			if _, ok := t.Argument.(*SymbolicTerm); ok {
				visit(t.Argument)
			}
		}
	}
	visit(t)
	return sortedKeys(seen)
}
