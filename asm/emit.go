package asm

import (
	"github.com/michael-0acf4/r6502/cpu"
)

// Walk the program in source order and emit its machine code, resolving
// label operands against the addresses bound by assignAddresses.
func (a *assembler) generateCode() error {
	logSection("Generating code")

	a.code = make([]byte, 0, 1024)
	for i, s := range a.program {
		var b []byte
		switch s := s.(type) {
		case *DirectiveStmt:
			b = s.Encode()
		case *InstrStmt:
			var err error
			b, err = a.encode(i, s)
			if err != nil {
				return err
			}
		}

		if len(b) > 0 {
			a.sourceLines = append(a.sourceLines, SourceLine{
				Address: int(a.addrs[i]),
				Line:    s.Pos().Line,
			})
			logBytes(int(a.addrs[i]), b)
		}
		a.code = append(a.code, b...)
	}
	return nil
}

// Encode the instruction at statement index i as its opcode followed by
// its little-endian operand bytes.
func (a *assembler) encode(i int, s *InstrStmt) ([]byte, error) {
	inst := a.insts[i]
	n := inst.Mode.OperandBytes()

	b := make([]byte, 1, inst.Length)
	b[0] = inst.Opcode
	if s.Operand.Kind == NoOperand {
		return b, nil
	}

	v, err := a.operandValue(i, s)
	if err != nil {
		return nil, err
	}
	if v.Bytes() > n {
		return nil, newError(ErrNumeric, "operand %s of %s is %d bytes, %d was expected",
			v, s.Instr, v.Bytes(), n)
	}
	if n == 1 && v.Overflows() {
		return nil, newError(ErrNumeric, "operand %s of %s does not fit in 1 byte", v, s.Instr)
	}
	return append(b, toBytes(n, int(v.Value))...), nil
}

// Resolve an instruction's operand to a value. Label references in
// relative mode become signed branch displacements.
func (a *assembler) operandValue(i int, s *InstrStmt) (NumericValue, error) {
	if s.Operand.Kind == ValueOperand {
		return s.Operand.Value, nil
	}

	target, ok := a.labels[s.Operand.Label]
	if !ok {
		return NumericValue{}, newError(ErrSymbol, "label %q is undefined", s.Operand.Label)
	}
	if s.Mode != cpu.REL {
		return NumericValue{Value: target, Size: 16}, nil
	}

	addr := int(a.addrs[i])
	var offset byte
	var err error
	if a.config.LegacyBranchOffsets {
		offset, err = relOffset(addr+1, int(target))
	} else {
		offset, err = relOffset(int(target), addr+int(a.insts[i].Length))
	}
	if err != nil {
		e := err.(*Error)
		e.Msg = "branch to " + s.Operand.Label + ": " + e.Msg
		return NumericValue{}, e
	}
	return NumericValue{Value: uint16(offset), Size: 8}, nil
}
