package asm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Config holds the options consulted while assembling a program.
type Config struct {
	EnableNES           bool       // target the NES dialect of the 6502
	AllowIllegal        bool       // permit unofficial opcodes on the allow-list
	AllowList           *AllowList // unofficial opcodes that may be emitted
	Origin              uint16     // address of the first emitted byte
	LegacyBranchOffsets bool       // encode branches as addr+1-target
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		EnableNES: true,
		AllowList: NewAllowList(),
	}
}

// An AllowList is a mutable set of unofficial opcode values that the
// assembler is permitted to emit when illegal opcodes are enabled.
type AllowList struct {
	opcodes map[byte]struct{}
}

// NewAllowList creates an allow-list containing the given opcodes.
func NewAllowList(opcodes ...byte) *AllowList {
	l := &AllowList{opcodes: make(map[byte]struct{})}
	for _, op := range opcodes {
		l.Add(op)
	}
	return l
}

// Add adds an opcode to the list.
func (l *AllowList) Add(opcode byte) {
	l.opcodes[opcode] = struct{}{}
}

// Remove removes an opcode from the list. It reports whether the opcode was
// present.
func (l *AllowList) Remove(opcode byte) bool {
	_, ok := l.opcodes[opcode]
	delete(l.opcodes, opcode)
	return ok
}

// Contains reports whether the opcode is on the list. A nil list contains
// nothing.
func (l *AllowList) Contains(opcode byte) bool {
	if l == nil {
		return false
	}
	_, ok := l.opcodes[opcode]
	return ok
}

// List returns the allowed opcodes in ascending order.
func (l *AllowList) List() []byte {
	if l == nil {
		return nil
	}
	list := make([]byte, 0, len(l.opcodes))
	for op := range l.opcodes {
		list = append(list, op)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// ParseOpcode parses an opcode value written as $XX, 0xXX or decimal.
func ParseOpcode(s string) (byte, error) {
	s = strings.TrimSpace(s)
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "$"):
		v, err = strconv.ParseUint(s[1:], 16, 8)
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 8)
	default:
		v, err = strconv.ParseUint(s, 10, 8)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid opcode '%s'", s)
	}
	return byte(v), nil
}

// ParseAllowList parses a comma-separated list of opcodes.
func ParseAllowList(s string) (*AllowList, error) {
	l := NewAllowList()
	for _, field := range strings.Split(s, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		op, err := ParseOpcode(field)
		if err != nil {
			return nil, err
		}
		l.Add(op)
	}
	return l, nil
}
