// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"
	"strings"

	"github.com/michael-0acf4/r6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"",        // IMPL
	"$%s",     // REL
	"#$%s",    // IMM
	"($%s)",   // IND
	"($%s,X)", // INDX
	"($%s),Y", // INDY
	"$%s",     // ABS
	"$%s,X",   // ABSX
	"$%s,Y",   // ABSY
	"$%s",     // ZP
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice, most
// significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in 'code' at offset 'i'. The code is
// assumed to be loaded at address 'origin'. Return a 'line' string
// representing the disassembled instruction and the offset 'next' that
// starts the following line of machine code. A truncated trailing
// instruction is rendered as a .byte directive.
func Disassemble(code []byte, i int, origin uint16, set *cpu.InstructionSet) (line string, next int) {
	inst := set.Lookup(code[i])
	n := int(inst.Length)
	if i+n > len(code) {
		return byteDirective(code[i:]), len(code)
	}

	operand := code[i+1 : i+n]
	if inst.Mode == cpu.REL {
		// Convert relative offset to absolute address.
		addr := int(origin) + i
		braddr := addr + n + int(int8(operand[0]))
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}

	line = inst.Name
	if inst.Mode != cpu.IMPL {
		line += " " + fmt.Sprintf(modeFormat[inst.Mode], hexString(operand))
	}
	return line, i + n
}

// Lines disassembles an entire block of machine code loaded at address
// 'origin'. Each line is prefixed with its address and raw bytes.
func Lines(code []byte, origin uint16) []string {
	set := cpu.GetInstructionSet()
	var lines []string
	for i := 0; i < len(code); {
		line, next := Disassemble(code, i, origin, set)
		raw := make([]string, next-i)
		for j := i; j < next; j++ {
			raw[j-i] = fmt.Sprintf("%02X", code[j])
		}
		lines = append(lines, fmt.Sprintf("%04X- %-8s  %s", int(origin)+i, strings.Join(raw, " "), line))
		i = next
	}
	return lines
}

func byteDirective(b []byte) string {
	values := make([]string, len(b))
	for i, v := range b {
		values[i] = "$" + hexString([]byte{v})
	}
	return ".byte " + strings.Join(values, ",")
}
