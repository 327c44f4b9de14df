package asm

import (
	"fmt"
	"strconv"
)

// A NumericValue is a 16-bit value tagged with its declared width in bits,
// either 8 or 16.
type NumericValue struct {
	Value uint16
	Size  int
}

// Bytes returns the declared width in bytes.
func (n NumericValue) Bytes() int {
	if n.Size > 8 {
		return 2
	}
	return 1
}

// Overflows reports whether an 8-bit value holds a result above $ff.
func (n NumericValue) Overflows() bool {
	return n.Size <= 8 && n.Value > 0xff
}

// Promote returns the value widened to at least the requested size. A value
// is never narrowed.
func (n NumericValue) Promote(size int) NumericValue {
	if size > n.Size {
		n.Size = size
	}
	return n
}

func (n NumericValue) String() string {
	if n.Size > 8 {
		return fmt.Sprintf("$%04x", n.Value)
	}
	return fmt.Sprintf("$%02x", n.Value)
}

// Canonicalize converts a numeric token into a sized value. Binary literals
// with more than 8 digits, hex literals with more than 2 digits and decimal
// literals above 255 or with more than 3 digits are 16-bit.
func Canonicalize(t Token) (NumericValue, error) {
	var base, wide int
	switch t.Type {
	case Hex:
		base, wide = 16, 2
	case Bin:
		base, wide = 2, 8
	case Dec:
		base, wide = 10, 3
	case Char:
		return NumericValue{Value: uint16(t.Text[0]), Size: 8}, nil
	default:
		return NumericValue{}, syntaxError(t, "number was expected, got %v instead", t)
	}

	v, err := strconv.ParseUint(t.Text, base, 16)
	if err != nil {
		return NumericValue{}, &Error{
			Kind:   ErrNumeric,
			Line:   t.Line,
			Column: t.Column,
			Msg:    fmt.Sprintf("%v does not fit in 16 bits", t),
		}
	}

	n := NumericValue{Value: uint16(v), Size: 8}
	if len(t.Text) > wide || (t.Type == Dec && v > 0xff) {
		n.Size = 16
	}
	return n, nil
}
