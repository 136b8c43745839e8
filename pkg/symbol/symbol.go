// Package symbol provides ground values of the answer set programming
// language: numbers, strings, functions (including constants and tuples)
// and the special values #inf and #sup.
//
// Symbols are immutable values. They are totally ordered:
//
//	#inf < numbers < functions < strings < #sup
//
// Numbers compare by value and strings lexicographically. Functions compare
// by arity, then name, then sign (positive first), then arguments from left
// to right.
package symbol

import (
	"cmp"
	"strconv"
	"strings"
)

// Type identifies the kind of a Symbol.
type Type int

// Symbol types in ascending order.
const (
	Infimum Type = iota
	Number
	Function
	String
	Supremum
)

func (t Type) String() string {
	switch t {
	case Infimum:
		return "infimum"
	case Number:
		return "number"
	case Function:
		return "function"
	case String:
		return "string"
	case Supremum:
		return "supremum"
	default:
		return "unknown"
	}
}

// Symbol is a ground term.
type Symbol struct {
	typ      Type
	num      int
	str      string // string value or function name
	args     []Symbol
	negative bool
}

// NewNumber returns a number symbol.
func NewNumber(n int) Symbol {
	return Symbol{typ: Number, num: n}
}

// NewString returns a string symbol holding s verbatim (unquoted).
func NewString(s string) Symbol {
	return Symbol{typ: String, str: s}
}

// NewFunction returns a function symbol. A function without arguments is a
// constant; a function with an empty name is a tuple. positive is false for
// classically negated functions (-p(1)).
func NewFunction(name string, args []Symbol, positive bool) Symbol {
	var cp []Symbol
	if len(args) > 0 {
		cp = make([]Symbol, len(args))
		copy(cp, args)
	}
	return Symbol{typ: Function, str: name, args: cp, negative: !positive}
}

// NewConstant returns a positive function symbol without arguments.
func NewConstant(name string) Symbol {
	return Symbol{typ: Function, str: name}
}

// NewTuple returns a tuple symbol.
func NewTuple(args ...Symbol) Symbol {
	return NewFunction("", args, true)
}

// Inf returns the #inf symbol.
func Inf() Symbol {
	return Symbol{typ: Infimum}
}

// Sup returns the #sup symbol.
func Sup() Symbol {
	return Symbol{typ: Supremum}
}

// Type returns the kind of the symbol.
func (s Symbol) Type() Type {
	return s.typ
}

// Number returns the value of a number symbol, 0 otherwise.
func (s Symbol) Number() int {
	return s.num
}

// StringValue returns the unquoted value of a string symbol.
func (s Symbol) StringValue() string {
	if s.typ != String {
		return ""
	}
	return s.str
}

// Name returns the name of a function symbol ("" for tuples and non-functions).
func (s Symbol) Name() string {
	if s.typ != Function {
		return ""
	}
	return s.str
}

// Arguments returns a copy of the arguments of a function symbol.
func (s Symbol) Arguments() []Symbol {
	if len(s.args) == 0 {
		return nil
	}
	out := make([]Symbol, len(s.args))
	copy(out, s.args)
	return out
}

// Arity returns the number of arguments of a function symbol.
func (s Symbol) Arity() int {
	return len(s.args)
}

// Argument returns the i-th (0-based) argument.
func (s Symbol) Argument(i int) Symbol {
	return s.args[i]
}

// IsPositive reports whether a function symbol carries no classical negation.
func (s Symbol) IsPositive() bool {
	return !s.negative
}

// IsNegative reports whether a function symbol is classically negated.
func (s Symbol) IsNegative() bool {
	return s.negative
}

// IsTuple reports whether s is a tuple.
func (s Symbol) IsTuple() bool {
	return s.typ == Function && s.str == ""
}

// Match reports whether s is a function with the given name and arity.
func (s Symbol) Match(name string, arity int) bool {
	return s.typ == Function && s.str == name && len(s.args) == arity
}

// Negate flips the classical negation of a function symbol or the sign of a
// number. It returns false for other symbols and for tuples.
func (s Symbol) Negate() (Symbol, bool) {
	switch {
	case s.typ == Number:
		return NewNumber(-s.num), true
	case s.typ == Function && s.str != "":
		out := s
		out.negative = !s.negative
		return out, true
	}
	return Symbol{}, false
}

// WithArguments returns a copy of a function symbol with new arguments.
func (s Symbol) WithArguments(args []Symbol) Symbol {
	return NewFunction(s.str, args, !s.negative)
}

// WithName returns a copy of a function symbol with a new name.
func (s Symbol) WithName(name string) Symbol {
	out := s
	out.str = name
	return out
}

// Equal reports whether two symbols are identical.
func (s Symbol) Equal(o Symbol) bool {
	return Compare(s, o) == 0
}

// Less reports whether s sorts before o.
func (s Symbol) Less(o Symbol) bool {
	return Compare(s, o) < 0
}

// Compare returns -1, 0 or +1 depending on the order of a and b.
func Compare(a, b Symbol) int {
	if a.typ != b.typ {
		return cmp.Compare(a.typ, b.typ)
	}
	switch a.typ {
	case Number:
		return cmp.Compare(a.num, b.num)
	case String:
		return strings.Compare(a.str, b.str)
	case Function:
		if c := cmp.Compare(len(a.args), len(b.args)); c != 0 {
			return c
		}
		if c := strings.Compare(a.str, b.str); c != 0 {
			return c
		}
		if a.negative != b.negative {
			if a.negative {
				return 1
			}
			return -1
		}
		for i := range a.args {
			if c := Compare(a.args[i], b.args[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

// String returns the symbol in the concrete syntax of the language.
func (s Symbol) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Symbol) write(b *strings.Builder) {
	switch s.typ {
	case Infimum:
		b.WriteString("#inf")
	case Supremum:
		b.WriteString("#sup")
	case Number:
		b.WriteString(strconv.Itoa(s.num))
	case String:
		b.WriteString(Quote(s.str))
	case Function:
		if s.negative {
			b.WriteByte('-')
		}
		b.WriteString(s.str)
		if len(s.args) == 0 && s.str != "" {
			return
		}
		b.WriteByte('(')
		for i, arg := range s.args {
			if i > 0 {
				b.WriteByte(',')
			}
			arg.write(b)
		}
		if s.str == "" && len(s.args) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
}

// Quote returns s as a string literal with '"', '\' and newlines escaped.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote reverses Quote. The input must include the surrounding quotes.
func Unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	var b strings.Builder
	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			if c == '"' {
				return "", false
			}
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			return "", false
		}
	}
	return b.String(), true
}
