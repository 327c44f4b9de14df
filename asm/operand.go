package asm

import (
	"strings"

	"github.com/michael-0acf4/r6502/cpu"
)

// Determine the addressing mode and operand of an instruction whose
// mnemonic has already been consumed. An 8-bit operand value always
// selects a zero-page mode and a 16-bit value an absolute mode.
func (p *parser) parseOperand(instr cpu.Instr) (cpu.Mode, Operand, error) {
	t := p.curr()
	switch {
	case p.atEnd():
		return cpu.IMPL, Operand{Kind: NoOperand}, nil

	case instr.IsBranch():
		return p.parseBranchOperand()

	case strings.EqualFold(t.Text, "a") && t.Type == Literal &&
		!p.isVariable(t) && p.peekNext().Type.isEnd():
		// Accumulator form of the shift and rotate instructions.
		p.next()
		return cpu.IMPL, Operand{Kind: NoOperand}, nil

	case t.Type == Hash:
		p.next()
		v, _, err := p.evalExpr()
		if err != nil {
			return 0, Operand{}, err
		}
		return cpu.IMM, valueOperand(v), nil

	case t.Type == ParenOpen:
		return p.parseIndirect()

	case p.isLabelOperand(0):
		p.next()
		mode := cpu.ABS
		if p.curr().Type == Comma {
			p.next()
			reg, err := p.parseIndex()
			if err != nil {
				return 0, Operand{}, err
			}
			mode = indexedMode(16, reg)
		}
		return mode, Operand{Kind: LabelRef, Label: t.Text}, nil
	}

	v, _, err := p.evalExpr()
	if err != nil {
		return 0, Operand{}, err
	}
	return p.parseDirect(v)
}

// A branch operand is either a literal displacement or a label name.
// Branch operands are not arithmetic expressions.
func (p *parser) parseBranchOperand() (cpu.Mode, Operand, error) {
	t := p.curr()
	switch {
	case t.Type.isNumber():
		v, err := Canonicalize(t)
		if err != nil {
			return 0, Operand{}, err
		}
		p.next()
		return cpu.REL, valueOperand(v), nil
	case t.Type == Literal:
		p.next()
		return cpu.REL, Operand{Kind: LabelRef, Label: t.Text}, nil
	default:
		return 0, Operand{}, syntaxError(t, "label or number was expected, got %v instead", t)
	}
}

// Parse the operand forms that open with a parenthesis:
//
//	(e,x)       indirect X
//	(e),y       indirect Y
//	(e),x       zero-page or absolute X on the grouped value
//	(e)         indirect for 16-bit values, zero page otherwise
//	(e) op ...  arithmetic with (e) as the leading factor
//	(label)     indirect through a label
func (p *parser) parseIndirect() (cpu.Mode, Operand, error) {
	p.next() // '('

	if t := p.curr(); t.Type == Literal && !p.isVariable(t) &&
		p.peekNext().Type == ParenClose && p.peek(2).Type.isEnd() {
		p.next()
		p.next()
		return cpu.IND, Operand{Kind: LabelRef, Label: t.Text}, nil
	}

	v, e, err := p.evalExpr()
	if err != nil {
		return 0, Operand{}, err
	}

	switch p.curr().Type {
	case Comma:
		p.next()
		idx := p.curr()
		reg, err := p.parseIndex()
		if err != nil {
			return 0, Operand{}, err
		}
		if reg != 'x' {
			return 0, Operand{}, syntaxError(idx, "literal \"x\" was expected, got %v instead", idx)
		}
		if _, err := p.consume(ParenClose); err != nil {
			return 0, Operand{}, err
		}
		return cpu.INDX, valueOperand(v), nil

	case ParenClose:
		p.next()

	default:
		return 0, Operand{}, syntaxError(p.curr(), "',' or ')' was expected, got %v instead", p.curr())
	}

	t := p.curr()
	switch {
	case t.Type == Comma:
		p.next()
		reg, err := p.parseIndex()
		if err != nil {
			return 0, Operand{}, err
		}
		if reg == 'y' {
			return cpu.INDY, valueOperand(v), nil
		}
		return indexedMode(v.Size, reg), valueOperand(v), nil

	case t.Type.isOperator():
		// The group is the leading factor of a longer expression.
		term, err := p.continueTerm(e)
		if err != nil {
			return 0, Operand{}, err
		}
		full, err := p.continueExpr(term)
		if err != nil {
			return 0, Operand{}, err
		}
		v, err := Eval(full, p.vars)
		if err != nil {
			return 0, Operand{}, locate(err, t)
		}
		return p.parseDirect(v)

	case v.Size > 8:
		return cpu.IND, valueOperand(v), nil

	default:
		return cpu.ZP, valueOperand(v), nil
	}
}

// Parse the optional index suffix of a zero-page or absolute operand.
func (p *parser) parseDirect(v NumericValue) (cpu.Mode, Operand, error) {
	if p.curr().Type != Comma {
		return indexedMode(v.Size, 0), valueOperand(v), nil
	}
	p.next()
	reg, err := p.parseIndex()
	if err != nil {
		return 0, Operand{}, err
	}
	return indexedMode(v.Size, reg), valueOperand(v), nil
}

// Consume an index register name, returning 'x' or 'y'.
func (p *parser) parseIndex() (byte, error) {
	t := p.curr()
	if t.Type == Literal {
		switch strings.ToLower(t.Text) {
		case "x":
			p.next()
			return 'x', nil
		case "y":
			p.next()
			return 'y', nil
		}
	}
	return 0, syntaxError(t, "literal \"x\" or \"y\" was expected, got %v instead", t)
}

// Report whether the token n positions past the cursor is a bare label
// operand: an identifier that is not a bound variable and that ends the
// operand.
func (p *parser) isLabelOperand(n int) bool {
	t := p.peek(n)
	if t.Type != Literal || p.isVariable(t) {
		return false
	}
	after := p.peek(n + 1).Type
	return after.isEnd() || after == Comma
}

func (p *parser) isVariable(t Token) bool {
	_, ok := p.vars[t.Text]
	return ok
}

func indexedMode(size int, reg byte) cpu.Mode {
	abs := size > 8
	switch {
	case reg == 'x' && abs:
		return cpu.ABSX
	case reg == 'x':
		return cpu.ZPX
	case reg == 'y' && abs:
		return cpu.ABSY
	case reg == 'y':
		return cpu.ZPY
	case abs:
		return cpu.ABS
	default:
		return cpu.ZP
	}
}

func valueOperand(v NumericValue) Operand {
	return Operand{Kind: ValueOperand, Value: v}
}
