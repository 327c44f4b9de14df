package asm

import (
	"github.com/michael-0acf4/r6502/cpu"
	log "github.com/sirupsen/logrus"
)

// The parser consumes a token sequence with a single forward cursor and
// builds the program's statements.
type parser struct {
	tokens []Token
	cursor int
	vars   Variables
}

func newParser(tokens []Token) *parser {
	return &parser{
		tokens: tokens,
		vars:   make(Variables),
	}
}

// Parse builds a program from a token sequence.
func Parse(tokens []Token) (Program, Variables, error) {
	p := newParser(tokens)
	prog, err := p.parse()
	if err != nil {
		return nil, nil, err
	}
	return prog, p.vars, nil
}

func (p *parser) parse() (Program, error) {
	prog := Program{}
	for {
		switch p.curr().Type {
		case EOF:
			return prog, nil
		case Newline, Comment:
			p.next()
			continue
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		log.WithField("line", s.Pos().Line).Debugf("parsed %s", s)
		prog = append(prog, s)

		// A label may share its line with the statement that follows it.
		if _, ok := s.(*LabelStmt); ok {
			continue
		}
		if !p.atEnd() {
			return nil, p.unexpected()
		}
	}
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.curr()
	switch {
	case t.Type == Literal && p.peekNext().Type == Equal:
		return p.parseAssign()
	case t.Type == Literal && p.peekNext().Type == Colon:
		return p.parseLabel()
	case t.Type == Directive:
		return p.parseDirective()
	case t.Type == Literal:
		return p.parseInstruction()
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parseAssign() (Statement, error) {
	name := p.curr()
	p.next()
	p.next() // '='

	start := p.curr()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.vars.Validate(name.Text, e); err != nil {
		return nil, locate(err, start)
	}
	p.vars[name.Text] = e

	return &AssignStmt{Position: position(name), Name: name.Text, Expr: e}, nil
}

func (p *parser) parseLabel() (Statement, error) {
	name := p.curr()
	p.next()
	p.next() // ':'
	return &LabelStmt{Position: position(name), Name: name.Text}, nil
}

func (p *parser) parseInstruction() (Statement, error) {
	t := p.curr()
	instr, ok := cpu.LookupInstr(t.Text)
	if !ok {
		return nil, &Error{
			Kind:   ErrLegality,
			Line:   t.Line,
			Column: t.Column,
			Msg:    t.Text + " is not a valid instruction",
		}
	}
	p.next()

	mode, operand, err := p.parseOperand(instr)
	if err != nil {
		return nil, err
	}
	return &InstrStmt{Position: position(t), Instr: instr, Mode: mode, Operand: operand}, nil
}

//
// expressions
//

// expr := term (('+'|'-') expr)?
func (p *parser) parseExpr() (MathExpr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.continueExpr(left)
}

// Complete an expression whose leading term has already been parsed.
func (p *parser) continueExpr(left MathExpr) (MathExpr, error) {
	if t := p.curr(); t.Type == Plus || t.Type == Minus {
		p.next()
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &BinExpr{Op: opByToken[t.Type], Left: left, Right: right}, nil
	}
	return left, nil
}

// term := factor (('*'|'/') term)?
func (p *parser) parseTerm() (MathExpr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return p.continueTerm(left)
}

// Complete a term whose leading factor has already been parsed.
func (p *parser) continueTerm(left MathExpr) (MathExpr, error) {
	if t := p.curr(); t.Type == Mult || t.Type == Div {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &BinExpr{Op: opByToken[t.Type], Left: left, Right: right}, nil
	}
	return left, nil
}

// factor := '(' expr ')' | unary
func (p *parser) parseFactor() (MathExpr, error) {
	if p.curr().Type == ParenOpen {
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(ParenClose); err != nil {
			return nil, err
		}
		return e, nil
	}
	return p.parseUnary()
}

// unary := number | placeholder
func (p *parser) parseUnary() (MathExpr, error) {
	t := p.curr()
	switch {
	case t.Type.isNumber():
		n, err := Canonicalize(t)
		if err != nil {
			return nil, err
		}
		p.next()
		return Num(n), nil
	case t.Type == Literal:
		p.next()
		return Placeholder(t.Text), nil
	default:
		return nil, syntaxError(t, "number or variable was expected, got %v instead", t)
	}
}

// Parse and evaluate an expression against the variables bound so far.
func (p *parser) evalExpr() (NumericValue, MathExpr, error) {
	start := p.curr()
	e, err := p.parseExpr()
	if err != nil {
		return NumericValue{}, nil, err
	}
	v, err := Eval(e, p.vars)
	if err != nil {
		return NumericValue{}, nil, locate(err, start)
	}
	return v, e, nil
}

// EvalString evaluates a standalone arithmetic expression. Identifiers
// are resolved against vars, which may be nil.
func EvalString(s string, vars Variables) (NumericValue, error) {
	tokens, err := TokenizeString(s)
	if err != nil {
		return NumericValue{}, err
	}
	p := newParser(tokens)
	if vars != nil {
		p.vars = vars
	}
	v, _, err := p.evalExpr()
	if err != nil {
		return NumericValue{}, err
	}
	if !p.atEnd() {
		return NumericValue{}, p.unexpected()
	}
	return v, nil
}

//
// cursor helpers
//

func (p *parser) curr() Token {
	return p.peek(0)
}

func (p *parser) peekNext() Token {
	return p.peek(1)
}

// Return the token n positions past the cursor. Positions past the end
// yield the final EOF token.
func (p *parser) peek(n int) Token {
	i := p.cursor + n
	if i >= len(p.tokens) {
		if len(p.tokens) == 0 {
			return Token{Type: EOF}
		}
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *parser) next() {
	if p.cursor < len(p.tokens) {
		p.cursor++
	}
}

// Report whether the cursor is at the end of a statement.
func (p *parser) atEnd() bool {
	return p.curr().Type.isEnd()
}

func (p *parser) consume(tt TokenType) (Token, error) {
	t := p.curr()
	if t.Type != tt {
		return t, syntaxError(t, "%v was expected, got %v instead", tt, t)
	}
	p.next()
	return t, nil
}

func (p *parser) unexpected() error {
	t := p.curr()
	return syntaxError(t, "token %v unexpected", t)
}

func position(t Token) Position {
	return Position{Line: t.Line, Column: t.Column}
}
