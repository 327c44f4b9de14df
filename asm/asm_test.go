// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func assemble(code string, config *Config) ([]byte, error) {
	r := bytes.NewReader([]byte(code))
	assembly, _, err := Assemble(r, "test", config)
	if err != nil {
		return []byte{}, err
	}
	return assembly.Code, nil
}

func checkASM(t *testing.T, asm string, expected string) {
	t.Helper()
	checkASMConfig(t, asm, nil, expected)
}

func checkASMConfig(t *testing.T, asm string, config *Config, expected string) {
	t.Helper()
	code, err := assemble(asm, config)
	if err != nil {
		t.Error(err)
		return
	}

	s := strings.ToUpper(strings.ReplaceAll(byteString(code), " ", ""))
	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkASMError(t *testing.T, asm string, errString string) {
	t.Helper()
	checkASMErrorConfig(t, asm, nil, errString)
}

func checkASMErrorConfig(t *testing.T, asm string, config *Config, errString string) {
	t.Helper()
	_, err := assemble(asm, config)
	if err == nil {
		t.Errorf("Expected error on %s, didn't get one\n", asm)
		return
	}
	if errString != err.Error() {
		t.Errorf("Expected '%s', got '%v'\n", errString, err)
	}
}

func illegalConfig(opcodes ...byte) *Config {
	config := DefaultConfig()
	config.AllowIllegal = true
	config.AllowList = NewAllowList(opcodes...)
	return config
}

func TestAddressingIMM(t *testing.T) {
	asm := `
	LDA #$20
	LDX #$20
	LDY #$20
	ADC #$20
	SBC #$20
	CMP #$20
	CPX #$20
	CPY #$20
	AND #$20
	ORA #$20
	EOR #$20`

	checkASM(t, asm, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingABS(t *testing.T) {
	asm := `
	LDA $2000
	LDX $2000
	LDY $2000
	STA $2000
	STX $2000
	STY $2000
	ADC $2000
	SBC $2000
	CMP $2000
	CPX $2000
	CPY $2000
	BIT $2000
	AND $2000
	ORA $2000
	EOR $2000
	INC $2000
	DEC $2000
	JMP $2000
	JSR $2000
	ASL $2000
	LSR $2000
	ROL $2000
	ROR $2000`

	checkASM(t, asm, "AD0020AE0020AC00208D00208E00208C00206D0020ED0020CD0020"+
		"EC0020CC00202C00202D00200D00204D0020EE0020CE00204C00202000200E0020"+
		"4E00202E00206E0020")
}

func TestAddressingABX(t *testing.T) {
	asm := `
	LDA $2000,X
	LDY $2000,X
	STA $2000,X
	ADC $2000,X
	SBC $2000,X
	CMP $2000,X
	AND $2000,X
	ORA $2000,X
	EOR $2000,X
	INC $2000,X
	DEC $2000,X
	ASL $2000,X
	LSR $2000,X
	ROL $2000,X
	ROR $2000,X`

	checkASM(t, asm, "BD0020BC00209D00207D0020FD0020DD00203D00201D00205D0020"+
		"FE0020DE00201E00205E00203E00207E0020")
}

func TestAddressingABY(t *testing.T) {
	asm := `
	LDA $2000,Y
	LDX $2000,Y
	STA $2000,Y
	ADC $2000,Y
	SBC $2000,Y
	CMP $2000,Y
	AND $2000,Y
	ORA $2000,Y
	EOR $2000,Y`

	checkASM(t, asm, "B90020BE0020990020790020F90020D90020390020190020590020")
}

func TestAddressingZPG(t *testing.T) {
	asm := `
	LDA $20
	LDX $20
	LDY $20
	STA $20
	STX $20
	STY $20
	ADC $20
	SBC $20
	CMP $20
	CPX $20
	CPY $20
	BIT $20
	AND $20
	ORA $20
	EOR $20
	INC $20
	DEC $20
	ASL $20
	LSR $20
	ROL $20
	ROR $20`

	checkASM(t, asm, "A520A620A4208520862084206520E520C520E420C42024202520"+
		"05204520E620C6200620462026206620")
}

func TestAddressingZPXY(t *testing.T) {
	asm := `
	LDA $20,x
	LDX $20,y
	STY $20,X
	STX $20,Y`

	checkASM(t, asm, "B520B62094209620")
}

func TestAddressingIND(t *testing.T) {
	checkASM(t, "JMP ($2000)", "6C0020")
	checkASM(t, "LDA ($10,x)\nLDA ($10),y\nSTA ($80,X)", "A110B1108180")
}

func TestAddressingIMPL(t *testing.T) {
	asm := `
	ASL
	ASL A
	lsr a
	ROL
	ROR
	NOP
	TAX
	RTS`

	checkASM(t, asm, "0A0A4A2A6AEAAA60")
}

func TestSizeSelectsMode(t *testing.T) {
	checkASM(t, "ASL $aa", "06AA")
	checkASM(t, "ASL $00aa", "0EAA00")
	checkASM(t, "ASL 255", "06FF")
	checkASM(t, "ASL 256", "0E0001")
	checkASM(t, "ASL 0255", "0EFF00")
}

func TestParenthesizedArithmetic(t *testing.T) {
	checkASM(t, "LDA $10 + 2", "A512")
	checkASM(t, "LDA ($10 + 2)", "A512")
	checkASM(t, "LDA ($10) + 2", "A512")
	checkASM(t, "LDA ($10 * 2) + 1, x", "B521")
	checkASM(t, "LDA (2 + 3) * 4", "A514")
	checkASM(t, "LDA ($10),x", "B510")
	checkASM(t, "LDA ($1000),x", "BD0010")
}

func TestLabels(t *testing.T) {
	asm := `
	JMP main
	NOP
main:
	LDA table,x
	JMP (vector)
	BNE main
table:
vector:`

	config := DefaultConfig()
	config.Origin = 0x0600
	checkASMConfig(t, asm, config, "4C0406EABD0C066C0C06D0F8")
}

func TestLabelSharesLine(t *testing.T) {
	checkASM(t, "loop: DEX\n  BNE loop", "CAD0FD")
}

func TestBranchForward(t *testing.T) {
	checkASM(t, "BEQ done\nNOP\ndone:", "F001EA")
}

func TestBranchLiteral(t *testing.T) {
	checkASM(t, "BNE $05", "D005")
	checkASMError(t, "BNE $0005", "operand $0005 of BNE is 2 bytes, 1 was expected")
}

func TestBranchOutOfRange(t *testing.T) {
	checkASMError(t, "start:\n.res 200\nBNE start",
		"branch to start: branch offset -202 is out of range [-128, 127]")
	checkASM(t, "start:\n.res 126\nBNE start", strings.Repeat("00", 126)+"D080")
}

func TestProc(t *testing.T) {
	asm := `
	.proc main
	NOP
	.endproc
	.segment "CODE"
	JMP main`

	checkASM(t, asm, "EA4C0000")
}

func TestDataBytes(t *testing.T) {
	asm := `
	.DB "AB", $00
	.db 'f', 'f'
	.byte 1+2+3+4
	.BYTE %01010101`

	checkASM(t, asm, "41420066660A55")
}

func TestDataWords(t *testing.T) {
	asm := `
	.DW "AB", $00
	.dw 'f'
	.dword $ABCD
	.DWORD 1+2+3+4`

	checkASM(t, asm, "424100006600CDAB0A00")
}

func TestReserve(t *testing.T) {
	checkASM(t, ".db 1\n.res 3\n.db 2", "0100000002")
	checkASMError(t, ".res $10", "line 1, col 6: decimal number was expected, got hex number $10")
}

func TestDataErrors(t *testing.T) {
	checkASMError(t, ".db $0102", "line 1, col 5: 0-th value is 2 bytes, 1 was expected")
	checkASMError(t, ".db 1, 2, 300", "line 1, col 11: 2-th value is 2 bytes, 1 was expected")
	checkASMError(t, `.dw "ABC"`, `line 1, col 5: length of "ABC" must be a multiple of 2 to form a 2 byte word`)
	checkASMError(t, ".db 1 2", "line 1, col 7: ',' was expected, got decimal number 2 instead")
	checkASMError(t, ".byte 200 + 100", "line 1, col 7: 0-th value 300 does not fit in 1 byte")
	checkASMError(t, ".db 1, $80 * 2", "line 1, col 8: 1-th value 256 does not fit in 1 byte")
}

func TestUnknownDirective(t *testing.T) {
	checkASMError(t, ".macro foo", "line 1, col 1: token directive .macro unexpected")
	checkASMError(t, ".include \"x.s\"", "line 1, col 1: token directive .include unexpected")
}

func TestInvalidInstruction(t *testing.T) {
	checkASMError(t, "FOO $12", "line 1, col 1: FOO is not a valid instruction")
	checkASMError(t, "ASL ($aa + 2 * %010), y", "instruction (ASL, INDY) does not exist")
	checkASMError(t, "JMP $20", "instruction (JMP, ZP) does not exist")
	checkASMError(t, "LDA #$0012", "operand $0012 of LDA is 2 bytes, 1 was expected")
}

func TestSymbolErrors(t *testing.T) {
	checkASMError(t, "JMP nowhere", `label "nowhere" is undefined`)
	checkASMError(t, "x = x + 1", `line 1, col 5: variable "x" has recursive definition`)
	checkASMError(t, "LDA #foo + 1", `line 1, col 6: variable "foo" is undefined`)
	checkASMError(t, "loop:\nloop:", `label "loop" declared more than once`)
}

func TestNumericErrors(t *testing.T) {
	checkASMError(t, ".dw $ffff + 1", "line 1, col 5: add overflow: left 65535, right 1")
	checkASMError(t, ".db 1 - 2", "line 1, col 5: substraction overflow: left 1, right 2")
	checkASMError(t, ".dw $0100 * $0100", "line 1, col 5: multiplication overflow: left 256, right 256")
	checkASMError(t, ".db 4 / 0", "line 1, col 5: cannot divide 4 by zero")
}

func TestByteOperandOverflow(t *testing.T) {
	checkASMError(t, "LDA $ff + 1", "operand $100 of LDA does not fit in 1 byte")
	checkASMError(t, "LDA #$ff + 1", "operand $100 of LDA does not fit in 1 byte")
	checkASMError(t, "LDX $80 * 2, y", "operand $100 of LDX does not fit in 1 byte")
	checkASM(t, "LDA $fe + 1", "A5FF")
}

func TestAddressSpaceEnd(t *testing.T) {
	code, err := assemble(".res 65535\nlast:\n.db 1", nil)
	if err != nil || len(code) != 0x10000 {
		t.Errorf("filling 64K failed: %v", err)
	}
	checkASMError(t, ".res 65536\nend:", `label "end" is bound past the end of the 64K address space`)
	checkASMError(t, ".res 65535\n.db 1\n.proc tail", `label "tail" is bound past the end of the 64K address space`)
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		asm  string
		kind ErrorKind
	}{
		{"LDA (", ErrSyntax},
		{".db 4 / 0", ErrNumeric},
		{"JMP nowhere", ErrSymbol},
		{"ASL ($10),y", ErrLegality},
	}
	for _, c := range cases {
		_, err := assemble(c.asm, nil)
		if !errors.Is(err, c.kind) {
			t.Errorf("%q: expected %v, got %v", c.asm, c.kind, err)
		}
	}
}

func TestIllegalOpcodes(t *testing.T) {
	checkASMError(t, "LAX #$0a", "illegal opcode $ab (LAX, IMM) is disabled")
	checkASMErrorConfig(t, "LAX #$0a", illegalConfig(), "illegal opcode $ab (LAX, IMM) is not in the allow-list")
	checkASMConfig(t, "LAX #$0a", illegalConfig(0xab), "AB0A")

	// Allow-listed opcodes are ignored while illegal opcodes are disabled.
	config := illegalConfig(0xab)
	config.AllowIllegal = false
	checkASMErrorConfig(t, "LAX #$0a", config, "illegal opcode $ab (LAX, IMM) is disabled")
}

func TestIllegalVariantPreferred(t *testing.T) {
	checkASM(t, "NOP", "EA")
	checkASMConfig(t, "NOP", illegalConfig(), "EA")
	checkASMConfig(t, "NOP", illegalConfig(0xda), "DA")
	checkASMConfig(t, "SBC #$01", illegalConfig(0xeb), "EB01")
	checkASMConfig(t, "isb $10\nkil", illegalConfig(0xe7, 0x02), "E71002")
}

func TestFixtureHello(t *testing.T) {
	asm := `; should be ignored
ignored = 1 + %101 * ($ff - 3)      ; also ignored
.byte "HELLO WORLD"
also_ignored:
.dword "LLHH", $00ff
LDA ($ff), y
NOP
BNE also_ignored`

	config := DefaultConfig()
	config.LegacyBranchOffsets = true
	c := NewCompiler(config)
	if err := c.LoadString(asm); err != nil {
		t.Fatal(err)
	}
	s, err := c.HexString()
	if err != nil {
		t.Fatal(err)
	}
	exp := "48 45 4c 4c 4f 20 57 4f 52 4c 44 4c 4c 48 48 ff 00 b1 ff ea d0 0a"
	if s != exp {
		t.Errorf("got: %s\nexp: %s", s, exp)
	}

	// The standard displacement counts from the end of the branch.
	config.LegacyBranchOffsets = false
	s, err = c.HexString()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(s, "ea d0 f5") {
		t.Errorf("got: %s\nexp suffix: ea d0 f5", s)
	}
}

func TestFixtureIllegal(t *testing.T) {
	asm := `x = %010
LAX #$a
LDA ($f0 + (x * 8 - $1)), y
NOP`

	c := NewCompiler(illegalConfig(0xab, 0xda))
	if err := c.LoadString(asm); err != nil {
		t.Fatal(err)
	}
	s, err := c.HexString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "ab 0a b1 ff da" {
		t.Errorf("got: %s\nexp: ab 0a b1 ff da", s)
	}

	c.Config.AllowList.Remove(0xab)
	if _, err := c.HexString(); err == nil {
		t.Error("expected LAX #imm to fail once $ab is removed from the allow-list")
	}
}

func TestFixtureShift(t *testing.T) {
	asm := `ASL $aa + 2 * %010
ASL
ASL $bbaa + 2 * %010 - %100
ASL $aa + 2 * %010, x
ASL $00aa + 2 * %010, x`

	c := NewCompiler(nil)
	if err := c.LoadString(asm); err != nil {
		t.Fatal(err)
	}
	s, err := c.HexString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "06 ae 0a 0e aa bb 16 ae 1e ae 00" {
		t.Errorf("got: %s\nexp: 06 ae 0a 0e aa bb 16 ae 1e ae 00", s)
	}
}

func TestDeterminism(t *testing.T) {
	asm := `
	LDA #$01
	STA $0200,x
	.db "abc", 4
	JMP ($fffc)`

	a, err := assemble(asm, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := assemble(asm, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("outputs differ: %x vs %x", a, b)
	}
}

func TestSourceMap(t *testing.T) {
	asm := `start:
	LDA #1
	x = 2
	STA $0200
end:`

	config := DefaultConfig()
	config.Origin = 0x8000
	assembly, sm, err := Assemble(strings.NewReader(asm), "prog.s", config)
	if err != nil {
		t.Fatal(err)
	}
	if assembly.Labels["end"] != 0x8005 {
		t.Errorf("end = $%04X, expected $8005", assembly.Labels["end"])
	}
	if sm.Origin != 0x8000 || sm.Size != 5 || len(sm.Lines) != 2 {
		t.Errorf("unexpected source map %+v", sm)
	}
	if file, line := sm.Search(0x8002); file != "prog.s" || line != 4 {
		t.Errorf("Search($8002) = %s:%d, expected prog.s:4", file, line)
	}
	if _, line := sm.Search(0x8001); line != -1 {
		t.Errorf("Search($8001) = %d, expected -1", line)
	}

	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	var sm2 SourceMap
	if _, err := sm2.ReadFrom(&buf); err != nil {
		t.Fatal(err)
	}
	if sm2.CRC != sm.CRC || len(sm2.Labels) != 2 || sm2.Labels[0].Name != "start" {
		t.Errorf("source map did not survive a round trip: %+v", sm2)
	}
}

func TestAssemblyReadFrom(t *testing.T) {
	assembly, _, err := Assemble(strings.NewReader("start: LDA #1\nJMP start"), "test", nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := assembly.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	loaded := &Assembly{Origin: 0x0600}
	n, err := loaded.ReadFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || !bytes.Equal(loaded.Code, assembly.Code) {
		t.Errorf("got %d bytes %x, expected %x", n, loaded.Code, assembly.Code)
	}

	big := &Assembly{Origin: 0xfffe}
	_, err = big.ReadFrom(bytes.NewReader([]byte{1, 2, 3}))
	if !errors.Is(err, ErrNumeric) || err.Error() != "3 bytes at $FFFE exceed 64K" {
		t.Errorf("unexpected error %v", err)
	}
}
