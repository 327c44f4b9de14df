package asm

import (
	"fmt"
	"strconv"
	"strings"
)

type directiveParser func(p *parser, d *DirectiveStmt) error

type directiveData struct {
	kind  DirectiveKind
	parse directiveParser
}

var directives = map[string]directiveData{
	"byte":    {Bytes, (*parser).parseBytes},
	"db":      {Bytes, (*parser).parseBytes},
	"dword":   {Words, (*parser).parseWords},
	"dw":      {Words, (*parser).parseWords},
	"segment": {Segment, (*parser).parseSegment},
	"proc":    {Proc, (*parser).parseProc},
	"endproc": {EndProc, nil},
	"res":     {Reserve, (*parser).parseReserve},
}

// Directive names are case-insensitive. Unknown directives, including
// macro, include and export, are rejected.
func (p *parser) parseDirective() (Statement, error) {
	t := p.curr()
	data, ok := directives[strings.ToLower(t.Text)]
	if !ok {
		return nil, p.unexpected()
	}
	p.next()

	d := &DirectiveStmt{Position: position(t), Kind: data.kind}
	if data.parse != nil {
		if err := data.parse(p, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (p *parser) parseBytes(d *DirectiveStmt) (err error) {
	d.Values, err = p.parseSequence(8)
	return err
}

func (p *parser) parseWords(d *DirectiveStmt) (err error) {
	d.Values, err = p.parseSequence(16)
	return err
}

func (p *parser) parseSegment(d *DirectiveStmt) error {
	t, err := p.consume(Str)
	d.Name = t.Text
	return err
}

func (p *parser) parseProc(d *DirectiveStmt) error {
	t, err := p.consume(Literal)
	d.Name = t.Text
	return err
}

func (p *parser) parseReserve(d *DirectiveStmt) error {
	t := p.curr()
	if t.Type != Dec {
		return syntaxError(t, "decimal number was expected, got %v", t)
	}
	n, err := strconv.ParseUint(t.Text, 10, 32)
	if err != nil || n > 0x10000 {
		return &Error{Kind: ErrNumeric, Line: t.Line, Column: t.Column,
			Msg: fmt.Sprintf("reserved size %s exceeds 64K", t.Text)}
	}
	p.next()
	d.Count = int(n)
	return nil
}

// Parse a comma-separated sequence of values of the given width in bits.
// Strings expand to one value per character, or to one value per
// big-endian pair of characters for 16-bit sequences.
func (p *parser) parseSequence(size int) ([]NumericValue, error) {
	seq := []NumericValue{}
	for !p.atEnd() {
		t := p.curr()
		if t.Type == Str {
			values, err := expandString(t, size)
			if err != nil {
				return nil, err
			}
			seq = append(seq, values...)
			p.next()
		} else {
			v, _, err := p.evalExpr()
			if err != nil {
				return nil, err
			}
			if v.Size > size {
				return nil, &Error{
					Kind:   ErrNumeric,
					Line:   t.Line,
					Column: t.Column,
					Msg:    fmt.Sprintf("%d-th value is %d bytes, %d was expected", len(seq), v.Bytes(), size/8),
				}
			}
			if size == 8 && v.Overflows() {
				return nil, &Error{
					Kind:   ErrNumeric,
					Line:   t.Line,
					Column: t.Column,
					Msg:    fmt.Sprintf("%d-th value %d does not fit in 1 byte", len(seq), v.Value),
				}
			}
			seq = append(seq, v.Promote(size))
		}

		if p.atEnd() {
			break
		}
		if _, err := p.consume(Comma); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func expandString(t Token, size int) ([]NumericValue, error) {
	s := t.Text
	if size == 8 {
		values := make([]NumericValue, len(s))
		for i := 0; i < len(s); i++ {
			values[i] = NumericValue{Value: uint16(s[i]), Size: 8}
		}
		return values, nil
	}

	if len(s)%2 != 0 {
		return nil, &Error{
			Kind:   ErrNumeric,
			Line:   t.Line,
			Column: t.Column,
			Msg:    fmt.Sprintf("length of %q must be a multiple of 2 to form a 2 byte word", s),
		}
	}
	values := make([]NumericValue, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		v := uint16(s[i])<<8 | uint16(s[i+1])
		values = append(values, NumericValue{Value: v, Size: 16})
	}
	return values, nil
}
