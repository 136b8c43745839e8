// Package ast defines the non-ground abstract syntax tree of answer set
// programs as produced by pkg/parser.
//
// Every node records its source span. Nodes are plain structs; packages
// that need immutable values (pkg/core) deep-copy them with Clone before
// rewriting.
package ast

import (
	"github.com/leapstack-labs/leapasp/pkg/symbol"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// Node is implemented by every AST node.
type Node interface {
	GetSpan() token.Span
	String() string
}

// Term represents a (possibly non-ground) term.
type Term interface {
	Node
	termNode()
}

// Atom is anything that can be wrapped by a Literal.
type Atom interface {
	Node
	atomNode()
}

// Head is the head of a rule.
type Head interface {
	Node
	headNode()
}

// BodyElement is an element of a rule body.
type BodyElement interface {
	Node
	bodyNode()
}

// Statement is a top-level statement of a program.
type Statement interface {
	Node
	stmtNode()
}

// NodeInfo provides common fields for all AST nodes.
type NodeInfo struct {
	Span token.Span
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// ---------- Operators ----------

// UnaryOperator is a prefix term operator.
type UnaryOperator int

// Unary operators.
const (
	UnaryMinus UnaryOperator = iota
)

// BinaryOperator is an infix arithmetic operator.
type BinaryOperator int

// Binary operators.
const (
	BinaryPlus BinaryOperator = iota
	BinaryMinus
	BinaryMultiplication
	BinaryDivision
	BinaryModulo
	BinaryPower
)

// ComparisonOperator relates two terms.
type ComparisonOperator int

// Comparison operators.
const (
	Equal ComparisonOperator = iota
	NotEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
)

// Sign is the default-negation prefix of a literal.
type Sign int

// Literal signs.
const (
	NoSign Sign = iota
	Negation
	DoubleNegation
)

// AggregateFunction names a body aggregate.
type AggregateFunction int

// Aggregate functions.
const (
	AggregateCount AggregateFunction = iota
	AggregateSum
	AggregateSumPlus
	AggregateMin
	AggregateMax
)

// ---------- Terms ----------

// SymbolicTerm is a ground constant: number, string, identifier, #inf or #sup.
type SymbolicTerm struct {
	NodeInfo
	Symbol symbol.Symbol
}

// Variable is a named variable; the anonymous variable is named "_".
type Variable struct {
	NodeInfo
	Name string
}

// UnaryOperation applies a prefix operator. Unary minus on a function
// denotes classical negation.
type UnaryOperation struct {
	NodeInfo
	Op       UnaryOperator
	Argument Term
}

// BinaryOperation applies an arithmetic operator.
type BinaryOperation struct {
	NodeInfo
	Op    BinaryOperator
	Left  Term
	Right Term
}

// Interval is the range term L..R.
type Interval struct {
	NodeInfo
	Left  Term
	Right Term
}

// Function is a compound term; an empty Name denotes a tuple.
type Function struct {
	NodeInfo
	Name      string
	Arguments []Term
}

func (*SymbolicTerm) termNode()    {}
func (*Variable) termNode()        {}
func (*UnaryOperation) termNode()  {}
func (*BinaryOperation) termNode() {}
func (*Interval) termNode()        {}
func (*Function) termNode()        {}

// ---------- Atoms and literals ----------

// SymbolicAtom is a predicate atom. Symbol is a *Function, a *SymbolicTerm
// holding a constant, or a *UnaryOperation (classical negation) of either.
type SymbolicAtom struct {
	NodeInfo
	Symbol Term
}

// Comparison is a built-in comparison between two terms.
type Comparison struct {
	NodeInfo
	Op    ComparisonOperator
	Left  Term
	Right Term
}

// BooleanConstant is #true or #false.
type BooleanConstant struct {
	NodeInfo
	Value bool
}

// Guard bounds an aggregate. For a left guard the term is on the left of
// the operator (T op #agg); for a right guard it is on the right.
type Guard struct {
	Op   ComparisonOperator
	Term Term
}

// BodyAggregateElement is one "terms : condition" element of a body aggregate.
type BodyAggregateElement struct {
	Terms     []Term
	Condition []*Literal
}

// BodyAggregate is an aggregate occurring in a rule body.
type BodyAggregate struct {
	NodeInfo
	Function   AggregateFunction
	Elements   []*BodyAggregateElement
	LeftGuard  *Guard
	RightGuard *Guard
}

func (*SymbolicAtom) atomNode()    {}
func (*Comparison) atomNode()      {}
func (*BooleanConstant) atomNode() {}
func (*BodyAggregate) atomNode()   {}

// Literal is a possibly default-negated atom.
type Literal struct {
	NodeInfo
	Sign Sign
	Atom Atom
}

// ConditionalLiteral is "literal : condition".
type ConditionalLiteral struct {
	NodeInfo
	Literal   *Literal
	Condition []*Literal
}

func (*Literal) headNode()            {}
func (*Literal) bodyNode()            {}
func (*ConditionalLiteral) bodyNode() {}

// ---------- Heads ----------

// Disjunction is a disjunctive head.
type Disjunction struct {
	NodeInfo
	Elements []*ConditionalLiteral
}

// Aggregate is a choice head "L { e1; e2 } U".
type Aggregate struct {
	NodeInfo
	LeftGuard  *Guard
	Elements   []*ConditionalLiteral
	RightGuard *Guard
}

func (*Disjunction) headNode() {}
func (*Aggregate) headNode()   {}

// ---------- Statements ----------

// Program opens a program part.
type Program struct {
	NodeInfo
	Name       string
	Parameters []string
}

// Rule is a normal, disjunctive or choice rule, or an integrity constraint
// (head #false).
type Rule struct {
	NodeInfo
	Head Head
	Body []BodyElement
}

// ShowSignature is "#show p/n." (or "#show." when Name is empty and Arity 0).
type ShowSignature struct {
	NodeInfo
	Name     string
	Arity    int
	Positive bool
}

// ShowTerm is "#show t : body.".
type ShowTerm struct {
	NodeInfo
	Term Term
	Body []BodyElement
}

// Minimize is a weak constraint ":~ body. [w@p, terms]".
type Minimize struct {
	NodeInfo
	Weight   Term
	Priority Term
	Terms    []Term
	Body     []BodyElement
}

// Definition is "#const name = value.".
type Definition struct {
	NodeInfo
	Name      string
	Value     Term
	IsDefault bool
}

func (*Program) stmtNode()       {}
func (*Rule) stmtNode()          {}
func (*ShowSignature) stmtNode() {}
func (*ShowTerm) stmtNode()      {}
func (*Minimize) stmtNode()      {}
func (*Definition) stmtNode()    {}

// IsHideAll reports whether s is the bare "#show." directive.
func (s *ShowSignature) IsHideAll() bool {
	return s.Name == ""
}

// IsConstraint reports whether the rule head is #false.
func (r *Rule) IsConstraint() bool {
	lit, ok := r.Head.(*Literal)
	if !ok || lit.Sign != NoSign {
		return false
	}
	b, ok := lit.Atom.(*BooleanConstant)
	return ok && !b.Value
}

// IsFact reports whether the rule has a plain atom head and an empty body.
func (r *Rule) IsFact() bool {
	if len(r.Body) > 0 {
		return false
	}
	lit, ok := r.Head.(*Literal)
	if !ok || lit.Sign != NoSign {
		return false
	}
	_, ok = lit.Atom.(*SymbolicAtom)
	return ok
}

// FalseLiteral returns a fresh #false literal.
func FalseLiteral() *Literal {
	return &Literal{Atom: &BooleanConstant{Value: false}}
}
