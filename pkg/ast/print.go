package ast

import (
	"strconv"
	"strings"
)

func (op UnaryOperator) String() string {
	return "-"
}

func (op BinaryOperator) String() string {
	switch op {
	case BinaryPlus:
		return "+"
	case BinaryMinus:
		return "-"
	case BinaryMultiplication:
		return "*"
	case BinaryDivision:
		return "/"
	case BinaryModulo:
		return "\\"
	case BinaryPower:
		return "**"
	}
	return "?"
}

func (op ComparisonOperator) String() string {
	switch op {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterEqual:
		return ">="
	}
	return "?"
}

// Flip returns the operator with its operands swapped (a < b  ==  b > a).
func (op ComparisonOperator) Flip() ComparisonOperator {
	switch op {
	case LessThan:
		return GreaterThan
	case LessEqual:
		return GreaterEqual
	case GreaterThan:
		return LessThan
	case GreaterEqual:
		return LessEqual
	}
	return op
}

// Negate returns the complementary operator.
func (op ComparisonOperator) Negate() ComparisonOperator {
	switch op {
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case LessThan:
		return GreaterEqual
	case LessEqual:
		return GreaterThan
	case GreaterThan:
		return LessEqual
	case GreaterEqual:
		return LessThan
	}
	return op
}

func (s Sign) String() string {
	switch s {
	case Negation:
		return "not "
	case DoubleNegation:
		return "not not "
	}
	return ""
}

func (f AggregateFunction) String() string {
	switch f {
	case AggregateCount:
		return "#count"
	case AggregateSum:
		return "#sum"
	case AggregateSumPlus:
		return "#sum+"
	case AggregateMin:
		return "#min"
	case AggregateMax:
		return "#max"
	}
	return "#?"
}

// ---------- Terms ----------

func (t *SymbolicTerm) String() string { return t.Symbol.String() }

func (t *Variable) String() string { return t.Name }

func (t *UnaryOperation) String() string {
	return t.Op.String() + t.Argument.String()
}

func (t *BinaryOperation) String() string {
	return "(" + t.Left.String() + t.Op.String() + t.Right.String() + ")"
}

func (t *Interval) String() string {
	return t.Left.String() + ".." + t.Right.String()
}

func (t *Function) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if t.Name != "" && len(t.Arguments) == 0 {
		return b.String()
	}
	b.WriteByte('(')
	writeTerms(&b, t.Arguments, ",")
	if t.Name == "" && len(t.Arguments) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

func writeTerms(b *strings.Builder, terms []Term, sep string) {
	for i, t := range terms {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(t.String())
	}
}

// ---------- Atoms ----------

func (a *SymbolicAtom) String() string { return a.Symbol.String() }

func (a *Comparison) String() string {
	return a.Left.String() + " " + a.Op.String() + " " + a.Right.String()
}

func (a *BooleanConstant) String() string {
	if a.Value {
		return "#true"
	}
	return "#false"
}

func (e *BodyAggregateElement) String() string {
	var b strings.Builder
	writeTerms(&b, e.Terms, ",")
	if len(e.Condition) > 0 {
		b.WriteString(": ")
		writeLiterals(&b, e.Condition, ", ")
	}
	return b.String()
}

func (a *BodyAggregate) String() string {
	var b strings.Builder
	if a.LeftGuard != nil {
		b.WriteString(a.LeftGuard.Term.String())
		b.WriteString(" " + a.LeftGuard.Op.String() + " ")
	}
	b.WriteString(a.Function.String())
	b.WriteString(" { ")
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.String())
	}
	b.WriteString(" }")
	writeRightGuard(&b, a.RightGuard)
	return b.String()
}

func writeRightGuard(b *strings.Builder, g *Guard) {
	if g == nil {
		return
	}
	b.WriteString(" " + g.Op.String() + " ")
	b.WriteString(g.Term.String())
}

func (l *Literal) String() string {
	return l.Sign.String() + l.Atom.String()
}

func (c *ConditionalLiteral) String() string {
	if len(c.Condition) == 0 {
		return c.Literal.String()
	}
	var b strings.Builder
	b.WriteString(c.Literal.String())
	b.WriteString(": ")
	writeLiterals(&b, c.Condition, ", ")
	return b.String()
}

func writeLiterals(b *strings.Builder, lits []*Literal, sep string) {
	for i, l := range lits {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(l.String())
	}
}

// ---------- Heads ----------

func (d *Disjunction) String() string {
	parts := make([]string, len(d.Elements))
	for i, e := range d.Elements {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

func (a *Aggregate) String() string {
	var b strings.Builder
	if a.LeftGuard != nil {
		b.WriteString(a.LeftGuard.Term.String())
		b.WriteString(" " + a.LeftGuard.Op.String() + " ")
	}
	b.WriteString("{ ")
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.String())
	}
	b.WriteString(" }")
	writeRightGuard(&b, a.RightGuard)
	return b.String()
}

// ---------- Statements ----------

func (p *Program) String() string {
	if len(p.Parameters) == 0 {
		return "#program " + p.Name + "."
	}
	return "#program " + p.Name + "(" + strings.Join(p.Parameters, ",") + ")."
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Head.String())
	if len(r.Body) > 0 {
		b.WriteString(" :- ")
		b.WriteString(BodyString(r.Body, "; "))
	}
	b.WriteByte('.')
	return b.String()
}

// BodyString joins body elements with sep.
func BodyString(body []BodyElement, sep string) string {
	parts := make([]string, len(body))
	for i, e := range body {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func (s *ShowSignature) String() string {
	if s.IsHideAll() {
		return "#show."
	}
	sign := ""
	if !s.Positive {
		sign = "-"
	}
	return "#show " + sign + s.Name + "/" + strconv.Itoa(s.Arity) + "."
}

func (s *ShowTerm) String() string {
	if len(s.Body) == 0 {
		return "#show " + s.Term.String() + "."
	}
	return "#show " + s.Term.String() + " : " + BodyString(s.Body, "; ") + "."
}

func (m *Minimize) String() string {
	var b strings.Builder
	b.WriteString(":~ ")
	b.WriteString(BodyString(m.Body, "; "))
	b.WriteString(". [")
	b.WriteString(m.Weight.String())
	b.WriteByte('@')
	b.WriteString(m.Priority.String())
	for _, t := range m.Terms {
		b.WriteByte(',')
		b.WriteString(t.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (d *Definition) String() string {
	s := "#const " + d.Name + " = " + d.Value.String() + "."
	if !d.IsDefault {
		s += " [override]"
	}
	return s
}
