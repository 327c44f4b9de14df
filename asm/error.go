package asm

import "fmt"

// An ErrorKind classifies an assembly failure.
type ErrorKind int

// Error kinds returned by the assembler. Each kind is itself an error, so
// callers may test for a class of failure with errors.Is.
const (
	ErrSyntax   ErrorKind = iota + 1 // unexpected or missing token
	ErrNumeric                       // overflow, underflow, division by zero, operand width
	ErrSymbol                        // undefined or duplicate variable/label, branch range
	ErrLegality                      // unknown mnemonic or opcode not permitted
)

var errorKindName = map[ErrorKind]string{
	ErrSyntax:   "syntax error",
	ErrNumeric:  "numeric error",
	ErrSymbol:   "symbol error",
	ErrLegality: "legality error",
}

func (k ErrorKind) Error() string {
	if s, ok := errorKindName[k]; ok {
		return s
	}
	return "assembly error"
}

// An Error describes a failure encountered while assembling source code.
// Line and Column are 1-based and zero when the failure is not tied to a
// source position.
type Error struct {
	Kind   ErrorKind
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
	}
	return e.Msg
}

// Unwrap exposes the error's kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func syntaxError(t Token, format string, args ...any) *Error {
	return &Error{
		Kind:   ErrSyntax,
		Line:   t.Line,
		Column: t.Column,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// Attach a token's position to an error that has none.
func locate(err error, t Token) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line, e.Column = t.Line, t.Column
	}
	return err
}
