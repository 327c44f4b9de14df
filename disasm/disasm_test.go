package disasm

import (
	"testing"

	"github.com/michael-0acf4/r6502/cpu"
)

func TestDisassemble(t *testing.T) {
	code := []byte{
		0xa9, 0x10,
		0x8d, 0x00, 0x02,
		0xd0, 0xfb,
		0x6c, 0x34, 0x12,
		0xb1, 0xff,
		0x0a,
		0xab, 0x0a,
		0xb5, 0x20,
		0xbd,
	}

	expected := []string{
		"LDA #$10",
		"STA $0200",
		"BNE $0602",
		"JMP ($1234)",
		"LDA ($FF),Y",
		"ASL",
		"LAX #$0A",
		"LDA $20,X",
		".byte $BD",
	}

	set := cpu.GetInstructionSet()
	i := 0
	for _, exp := range expected {
		line, next := Disassemble(code, i, 0x0600, set)
		if line != exp {
			t.Errorf("offset %d: got %q, expected %q", i, line, exp)
		}
		i = next
	}
	if i != len(code) {
		t.Errorf("stopped at offset %d, expected %d", i, len(code))
	}
}

func TestLines(t *testing.T) {
	lines := Lines([]byte{0xa9, 0x10, 0xea}, 0xc000)
	expected := []string{
		"C000- A9 10     LDA #$10",
		"C002- EA        NOP",
	}
	if len(lines) != len(expected) {
		t.Fatalf("got %d lines, expected %d", len(lines), len(expected))
	}
	for i := range lines {
		if lines[i] != expected[i] {
			t.Errorf("got %q, expected %q", lines[i], expected[i])
		}
	}
}
