package asm

import (
	"fmt"
	"strings"

	"github.com/michael-0acf4/r6502/cpu"
)

// A Position locates a statement in the source.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself, so that statements embedding a Position
// satisfy the Statement interface.
func (p Position) Pos() Position {
	return p
}

// A Statement is a single parsed line of the program: a *DirectiveStmt,
// *AssignStmt, *LabelStmt or *InstrStmt.
type Statement interface {
	fmt.Stringer
	Pos() Position
}

// A Program is the ordered sequence of statements parsed from the source.
type Program []Statement

func (p Program) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// DirectiveKind identifies an assembler directive.
type DirectiveKind byte

// Supported directives.
const (
	EndProc DirectiveKind = iota // .endproc
	Proc                         // .proc NAME
	Segment                      // .segment "NAME"
	Bytes                        // .byte / .db
	Words                        // .dword / .dw
	Reserve                      // .res N
)

var directiveName = []string{"endproc", "proc", "segment", "byte", "dword", "res"}

func (k DirectiveKind) String() string {
	return directiveName[k]
}

// A DirectiveStmt is an assembler directive.
type DirectiveStmt struct {
	Position
	Kind   DirectiveKind
	Name   string         // proc or segment name
	Values []NumericValue // byte or word payload
	Count  int            // reserved byte count
}

// Size returns the number of bytes emitted by the directive.
func (d *DirectiveStmt) Size() int {
	switch d.Kind {
	case Bytes:
		return len(d.Values)
	case Words:
		return 2 * len(d.Values)
	case Reserve:
		return d.Count
	default:
		return 0
	}
}

// Encode returns the bytes emitted by the directive. Words are stored
// little-endian.
func (d *DirectiveStmt) Encode() []byte {
	b := make([]byte, 0, d.Size())
	switch d.Kind {
	case Bytes:
		for _, v := range d.Values {
			b = append(b, byte(v.Value))
		}
	case Words:
		for _, v := range d.Values {
			b = append(b, toBytes(2, int(v.Value))...)
		}
	case Reserve:
		b = b[:d.Count]
	}
	return b
}

func (d *DirectiveStmt) String() string {
	switch d.Kind {
	case Proc:
		return fmt.Sprintf(".proc %s", d.Name)
	case Segment:
		return fmt.Sprintf(".segment %q", d.Name)
	case Reserve:
		return fmt.Sprintf(".res %d", d.Count)
	case Bytes, Words:
		values := make([]string, len(d.Values))
		for i, v := range d.Values {
			values[i] = v.String()
		}
		return fmt.Sprintf(".%s %s", d.Kind, strings.Join(values, ", "))
	default:
		return "." + d.Kind.String()
	}
}

// An AssignStmt binds a variable to an expression.
type AssignStmt struct {
	Position
	Name string
	Expr MathExpr
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s", a.Name, a.Expr)
}

// A LabelStmt declares a label at the current address.
type LabelStmt struct {
	Position
	Name string
}

func (l *LabelStmt) String() string {
	return l.Name + ":"
}

// OperandKind identifies the form of an instruction operand.
type OperandKind byte

// Operand forms.
const (
	NoOperand    OperandKind = iota // implied
	LabelRef                        // unresolved label
	ValueOperand                    // resolved value
)

// An Operand is the argument of an instruction.
type Operand struct {
	Kind  OperandKind
	Label string
	Value NumericValue
}

func (o Operand) String() string {
	switch o.Kind {
	case LabelRef:
		return o.Label
	case ValueOperand:
		return o.Value.String()
	default:
		return ""
	}
}

// An InstrStmt is a CPU instruction with its resolved addressing mode.
type InstrStmt struct {
	Position
	Instr   cpu.Instr
	Mode    cpu.Mode
	Operand Operand
}

func (i *InstrStmt) String() string {
	if i.Operand.Kind == NoOperand {
		return fmt.Sprintf("%s %s", i.Instr, i.Mode)
	}
	return fmt.Sprintf("%s %s %s", i.Instr, i.Mode, i.Operand)
}
