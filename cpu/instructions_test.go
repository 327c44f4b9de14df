package cpu

import "testing"

func TestInstructionSetComplete(t *testing.T) {
	set := GetInstructionSet()
	official := 0
	for op := 0; op < 256; op++ {
		inst := set.Lookup(byte(op))
		if inst.Opcode != byte(op) {
			t.Errorf("opcode $%02X: stored as $%02X", op, inst.Opcode)
		}
		if int(inst.Length) != 1+inst.Mode.OperandBytes() {
			t.Errorf("opcode $%02X (%s %s): length %d", op, inst.Name, inst.Mode, inst.Length)
		}
		if inst.Official {
			official++
		}
	}
	if official != 151 {
		t.Errorf("got %d official opcodes, expected 151", official)
	}
}

func TestFindOfficialFirst(t *testing.T) {
	set := GetInstructionSet()

	cases := []struct {
		instr Instr
		mode  Mode
		first byte
		count int
	}{
		{NOP, IMPL, 0xea, 7},
		{SBC, IMM, 0xe9, 2},
		{LAX, IMM, 0xab, 1},
		{JMP, IND, 0x6c, 1},
		{ASL, INDY, 0, 0},
	}

	for _, c := range cases {
		variants := set.Find(c.instr, c.mode)
		if len(variants) != c.count {
			t.Errorf("%s %s: got %d variants, expected %d", c.instr, c.mode, len(variants), c.count)
			continue
		}
		if c.count > 0 && variants[0].Opcode != c.first {
			t.Errorf("%s %s: first variant $%02X, expected $%02X", c.instr, c.mode, variants[0].Opcode, c.first)
		}
	}

	if n := len(set.GetInstructions(LDA)); n != 8 {
		t.Errorf("LDA has %d opcodes, expected 8", n)
	}
}

func TestLookupInstr(t *testing.T) {
	cases := []struct {
		name  string
		instr Instr
		ok    bool
	}{
		{"lda", LDA, true},
		{"Lax", LAX, true},
		{"ISB", ISC, true},
		{"kil", HLT, true},
		{"MOV", 0, false},
	}

	for _, c := range cases {
		i, ok := LookupInstr(c.name)
		if ok != c.ok || (ok && i != c.instr) {
			t.Errorf("%s: got (%v, %v), expected (%v, %v)", c.name, i, ok, c.instr, c.ok)
		}
	}

	if !BNE.IsBranch() || JMP.IsBranch() {
		t.Error("IsBranch misclassified BNE or JMP")
	}
}
