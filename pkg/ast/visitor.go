package ast

import (
	"slices"
)

// Walk traverses an AST depth-first and calls fn for each node.
// Guards and aggregate elements are visited as well. If fn returns
// false, the children of that node are skipped.
func Walk(node any, fn func(node any) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	walkNode(node, fn)
}

func walkNode(node any, fn func(node any) bool) {
	switch n := node.(type) {
	// Terms
	case *UnaryOperation:
		Walk(n.Argument, fn)
	case *BinaryOperation:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Interval:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Function:
		for _, arg := range n.Arguments {
			Walk(arg, fn)
		}

	// Atoms
	case *SymbolicAtom:
		Walk(n.Symbol, fn)
	case *Comparison:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Guard:
		if n == nil {
			return
		}
		Walk(n.Term, fn)
	case *BodyAggregateElement:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
		for _, l := range n.Condition {
			Walk(l, fn)
		}
	case *BodyAggregate:
		if n.LeftGuard != nil {
			Walk(n.LeftGuard, fn)
		}
		for _, e := range n.Elements {
			Walk(e, fn)
		}
		if n.RightGuard != nil {
			Walk(n.RightGuard, fn)
		}
	case *Literal:
		Walk(n.Atom, fn)
	case *ConditionalLiteral:
		Walk(n.Literal, fn)
		for _, l := range n.Condition {
			Walk(l, fn)
		}

	// Heads
	case *Disjunction:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *Aggregate:
		if n.LeftGuard != nil {
			Walk(n.LeftGuard, fn)
		}
		for _, e := range n.Elements {
			Walk(e, fn)
		}
		if n.RightGuard != nil {
			Walk(n.RightGuard, fn)
		}

	// Statements
	case *Rule:
		Walk(n.Head, fn)
		walkBody(n.Body, fn)
	case *ShowTerm:
		Walk(n.Term, fn)
		walkBody(n.Body, fn)
	case *Minimize:
		Walk(n.Weight, fn)
		Walk(n.Priority, fn)
		for _, t := range n.Terms {
			Walk(t, fn)
		}
		walkBody(n.Body, fn)
	case *Definition:
		Walk(n.Value, fn)
	}
}

func walkBody(body []BodyElement, fn func(node any) bool) {
	for _, e := range body {
		Walk(e, fn)
	}
}

// Variables returns the sorted, distinct names of the named variables
// occurring below node. The anonymous variable is not reported.
func Variables(node any) []string {
	seen := make(map[string]struct{})
	Walk(node, func(n any) bool {
		if v, ok := n.(*Variable); ok && v.Name != "_" {
			seen[v.Name] = struct{}{}
		}
		return true
	})
	return sortedKeys(seen)
}

// BodyVariables returns the sorted, distinct variable names of a rule body.
func BodyVariables(body []BodyElement) []string {
	seen := make(map[string]struct{})
	for _, e := range body {
		for _, name := range Variables(e) {
			seen[name] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// GlobalSafeVariables returns the variables bound by the positive part of
// a body: positive literals, and the terms of equality guards of body
// aggregates. Default-negated literals and conditional literals are not
// descended into.
func GlobalSafeVariables(body []BodyElement) []string {
	seen := make(map[string]struct{})
	collect := func(n any) bool {
		switch n := n.(type) {
		case *Variable:
			if n.Name != "_" {
				seen[n.Name] = struct{}{}
			}
		case *ConditionalLiteral:
			return false
		case *Literal:
			return n.Sign == NoSign
		case *BodyAggregate:
			for _, g := range []*Guard{n.LeftGuard, n.RightGuard} {
				if g != nil && g.Op == Equal {
					for _, name := range Variables(g.Term) {
						seen[name] = struct{}{}
					}
				}
			}
			return false
		}
		return true
	}
	for _, e := range body {
		Walk(e, collect)
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
