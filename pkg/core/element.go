package core

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// Element is a value of a Model: a Number, a String or a GroundAtom.
type Element interface {
	String() string
	// Symbol returns the element as a ground symbol.
	Symbol() symbol.Symbol
	kind() elementKind
}

type elementKind int

// Kinds in model order.
const (
	kindNumber elementKind = iota
	kindString
	kindAtom
)

// Number is an integer model element.
type Number int

// String is a string model element.
type String string

func (n Number) String() string        { return strconv.Itoa(int(n)) }
func (n Number) Symbol() symbol.Symbol { return symbol.NewNumber(int(n)) }
func (Number) kind() elementKind       { return kindNumber }

// String returns the quoted string.
func (s String) String() string        { return symbol.Quote(string(s)) }
func (s String) Symbol() symbol.Symbol { return symbol.NewString(string(s)) }
func (String) kind() elementKind       { return kindString }

func (a GroundAtom) kind() elementKind { return kindAtom }

// compareElements orders numbers before strings before atoms.
func compareElements(a, b Element) int {
	if c := cmp.Compare(a.kind(), b.kind()); c != 0 {
		return c
	}
	switch a := a.(type) {
	case Number:
		return cmp.Compare(a, b.(Number))
	case String:
		return strings.Compare(string(a), string(b.(String)))
	case GroundAtom:
		return a.Compare(b.(GroundAtom))
	}
	return 0
}

// elementOf converts a ground symbol into an element.
func elementOf(sym symbol.Symbol) (Element, error) {
	switch sym.Type() {
	case symbol.Number:
		return Number(sym.Number()), nil
	case symbol.String:
		return String(sym.StringValue()), nil
	}
	return GroundAtomOf(sym)
}
