// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"math"
)

//
// exprOp
//

type exprOp byte

const (
	opAdd exprOp = iota
	opSubtract
	opMultiply
	opDivide
)

type opdata struct {
	symbol string
	eval   func(a, b uint16) (uint16, error)
}

var ops = []opdata{
	{"+", func(a, b uint16) (uint16, error) {
		if uint32(a)+uint32(b) > math.MaxUint16 {
			return 0, newError(ErrNumeric, "add overflow: left %d, right %d", a, b)
		}
		return a + b, nil
	}},
	{"-", func(a, b uint16) (uint16, error) {
		if b > a {
			return 0, newError(ErrNumeric, "substraction overflow: left %d, right %d", a, b)
		}
		return a - b, nil
	}},
	{"*", func(a, b uint16) (uint16, error) {
		if uint32(a)*uint32(b) > math.MaxUint16 {
			return 0, newError(ErrNumeric, "multiplication overflow: left %d, right %d", a, b)
		}
		return a * b, nil
	}},
	{"/", func(a, b uint16) (uint16, error) {
		if b == 0 {
			return 0, newError(ErrNumeric, "cannot divide %d by zero", a)
		}
		return a / b, nil
	}},
}

var opByToken = map[TokenType]exprOp{
	Plus:  opAdd,
	Minus: opSubtract,
	Mult:  opMultiply,
	Div:   opDivide,
}

func (op exprOp) symbol() string {
	return ops[op].symbol
}

func (op exprOp) eval(a, b uint16) (uint16, error) {
	return ops[op].eval(a, b)
}

//
// MathExpr
//

// A MathExpr is a node of an arithmetic expression tree: a *BinExpr, a
// Placeholder or a Num.
type MathExpr interface {
	fmt.Stringer
	isMathExpr()
}

// A BinExpr applies a binary operator to two sub-expressions.
type BinExpr struct {
	Op    exprOp
	Left  MathExpr
	Right MathExpr
}

// A Placeholder refers to a variable by name.
type Placeholder string

// A Num is a literal value.
type Num NumericValue

func (*BinExpr) isMathExpr()    {}
func (Placeholder) isMathExpr() {}
func (Num) isMathExpr()         {}

func (e *BinExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op.symbol(), e.Right)
}

func (p Placeholder) String() string {
	return string(p)
}

func (n Num) String() string {
	return NumericValue(n).String()
}

// Variables maps variable names to their defining expressions.
type Variables map[string]MathExpr

// Eval computes the value of an expression. Arithmetic is performed on
// unsigned 16-bit values, and the size of a binary result is the larger of
// its operands' sizes.
func Eval(e MathExpr, vars Variables) (NumericValue, error) {
	ev := evaluator{vars: vars, active: make(map[string]bool)}
	return ev.eval(e)
}

type evaluator struct {
	vars   Variables
	active map[string]bool // variables currently being expanded
}

func (ev *evaluator) eval(e MathExpr) (NumericValue, error) {
	switch e := e.(type) {
	case Num:
		return NumericValue(e), nil

	case Placeholder:
		name := string(e)
		def, ok := ev.vars[name]
		if !ok {
			return NumericValue{}, newError(ErrSymbol, "variable %q is undefined", name)
		}
		if ev.active[name] {
			return NumericValue{}, newError(ErrSymbol, "variable %q has recursive definition", name)
		}
		ev.active[name] = true
		v, err := ev.eval(def)
		delete(ev.active, name)
		return v, err

	case *BinExpr:
		left, err := ev.eval(e.Left)
		if err != nil {
			return NumericValue{}, err
		}
		right, err := ev.eval(e.Right)
		if err != nil {
			return NumericValue{}, err
		}
		v, err := e.Op.eval(left.Value, right.Value)
		if err != nil {
			return NumericValue{}, err
		}
		return NumericValue{Value: v, Size: max(left.Size, right.Size)}, nil

	default:
		return NumericValue{}, newError(ErrSyntax, "unsupported expression %v", e)
	}
}

// Validate rejects an expression assigned to the named variable if it
// refers to that variable, directly or through other variables, or to a
// variable that has not been defined.
func (vars Variables) Validate(assignee string, e MathExpr) error {
	return vars.validate(assignee, e, make(map[string]bool))
}

func (vars Variables) validate(assignee string, e MathExpr, visited map[string]bool) error {
	switch e := e.(type) {
	case *BinExpr:
		if err := vars.validate(assignee, e.Left, visited); err != nil {
			return err
		}
		return vars.validate(assignee, e.Right, visited)

	case Placeholder:
		name := string(e)
		if name == assignee {
			return newError(ErrSymbol, "variable %q has recursive definition", name)
		}
		if visited[name] {
			return nil
		}
		visited[name] = true
		def, ok := vars[name]
		if !ok {
			return newError(ErrSymbol, "variable %q is undefined", name)
		}
		return vars.validate(assignee, def, visited)
	}
	return nil
}
