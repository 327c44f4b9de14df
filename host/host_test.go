package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runScript(t *testing.T, h *Host, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	h.RunCommands(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, false)
	return out.String()
}

func checkOutput(t *testing.T, got string, expected ...string) {
	t.Helper()
	exp := strings.Join(expected, "\n") + "\n"
	if got != exp {
		t.Errorf("output mismatch:\ngot:\n%s\nexpected:\n%s", got, exp)
	}
}

func TestAssembleInteractive(t *testing.T) {
	out := runScript(t, New(),
		"set origin $0600",
		"assemble interactive",
		"start: LDA #$01",
		"BNE start",
		"END",
		"hex",
		"labels",
		"parse",
		"disassemble",
		"quit",
	)

	checkOutput(t, out,
		"Setting updated.",
		"Enter assembly language instructions.",
		"Type END on a line by itself to assemble.",
		"Assembled 4 bytes.",
		"a9 01 d0 fc",
		"a9 01 d0 fc",
		"Addr  Label",
		"----- -----",
		"$0600 start",
		"start:",
		"LDA IMM $01",
		"BNE REL start",
		"0600- A9 01     LDA #$01",
		"0602- D0 FC     BNE $0600",
	)
}

func TestAllowCommands(t *testing.T) {
	out := runScript(t, New(),
		"allow add $ab $ea",
		"allow list",
		"allow remove $ab $ab",
		"allow list",
		"allow add lax",
	)

	checkOutput(t, out,
		"Opcode $AB (LAX IMM) allowed.",
		"Opcode $EA (NOP IMPL) is an official opcode.",
		"Opcode  Instruction",
		"------  -----------",
		"$AB     LAX IMM",
		"Opcode $AB removed.",
		"Opcode $AB was not on the allow-list.",
		"No unofficial opcodes are allowed.",
		"invalid opcode 'lax'",
	)
}

func TestIllegalOpcodeSettings(t *testing.T) {
	h := New()
	out := runScript(t, h,
		"allow add $ab",
		"assemble interactive",
		"LAX #$0a",
		"END",
		"set allow true",
		"assemble interactive",
		"LAX #$0a",
		"END",
	)

	checkOutput(t, out,
		"Opcode $AB (LAX IMM) allowed.",
		"Enter assembly language instructions.",
		"Type END on a line by itself to assemble.",
		"illegal opcode $ab (LAX, IMM) is disabled",
		"Setting updated.",
		"Enter assembly language instructions.",
		"Type END on a line by itself to assemble.",
		"Assembled 2 bytes.",
		"ab 0a",
	)
	if !h.settings.AllowIllegal {
		t.Error("AllowIllegal setting was not updated")
	}
}

func TestSettings(t *testing.T) {
	h := New()
	out := runScript(t, h,
		"set legacy 1",
		"set origin $c000 + 2",
		"set enable maybe",
		"set bogus 1",
	)

	checkOutput(t, out,
		"Setting updated.",
		"Setting updated.",
		"invalid bool value 'maybe'",
		"Setting 'bogus' not found",
	)
	if !h.settings.LegacyBranch || h.settings.Origin != 0xc002 {
		t.Errorf("unexpected settings %+v", *h.settings)
	}
	if c := h.compiler.Config; !c.LegacyBranchOffsets || c.Origin != 0xc002 {
		t.Errorf("compiler config not updated: %+v", *c)
	}
}

func TestLoadAndAssembleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	err := os.WriteFile(src, []byte("x = $02\nLDA ($f0 + (x * 8 - $1)), y\nNOP\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	h := New()
	out := runScript(t, h,
		"load "+filepath.Join(dir, "prog"),
		"hex",
		"evaluate x * 3",
		"assemble file "+src,
	)

	checkOutput(t, out,
		"Loaded 'prog.asm' (3 statements).",
		"b1 ff ea",
		"$06 (6)",
		"Assembled 'prog.asm' to 'prog.bin' (3 bytes).",
	)

	bin, err := os.ReadFile(filepath.Join(dir, "prog.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bin, []byte{0xb1, 0xff, 0xea}) {
		t.Errorf("got binary %x", bin)
	}
	if _, err := os.Stat(filepath.Join(dir, "prog.map")); err != nil {
		t.Errorf("source map missing: %v", err)
	}
}

func TestDisassembleBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "prog.bin")
	if err := os.WriteFile(bin, []byte{0xa9, 0x01, 0x4c, 0x00, 0xc0, 0xff}, 0644); err != nil {
		t.Fatal(err)
	}

	out := runScript(t, New(),
		"set origin $c000",
		"disassemble "+bin,
		"disassemble "+filepath.Join(dir, "missing.bin"),
	)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("unexpected output:\n%s", out)
	}
	checkOutput(t, strings.Join(lines[:4], "\n")+"\n",
		"Setting updated.",
		"C000- A9 01     LDA #$01",
		"C002- 4C 00 C0  JMP $C000",
		"C005- FF        .byte $FF",
	)
	if !strings.HasPrefix(lines[4], "Failed to open 'missing.bin'") {
		t.Errorf("unexpected error line %q", lines[4])
	}
}

func TestNoProgram(t *testing.T) {
	out := runScript(t, New(), "hex", "parse", "load")
	checkOutput(t, out,
		"No program loaded.",
		"No program loaded.",
		"Syntax: load <filename>",
	)
}

func TestHelp(t *testing.T) {
	out := runScript(t, New(), "help", "help allow", "help a")

	for _, s := range []string{
		"r6502 commands:",
		"    allow            Unofficial opcode allow-list commands",
		"allow commands:",
		"    remove           Disallow unofficial opcodes",
		"Syntax: assemble file <filename> [<output>]",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("help output is missing %q:\n%s", s, out)
		}
	}
}

func TestIndentWrap(t *testing.T) {
	s := indentWrap(3, strings.Repeat("word ", 20))
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), s)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "   word") || len(l) > 72 {
			t.Errorf("bad line %q", l)
		}
	}
}
