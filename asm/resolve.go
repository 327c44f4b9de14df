package asm

import (
	"github.com/michael-0acf4/r6502/cpu"
	log "github.com/sirupsen/logrus"
)

// Walk the program in order, assigning an address to every statement and
// binding each label to the address of the statement that follows it.
func (a *assembler) assignAddresses() error {
	logSection("Assigning addresses")

	a.addrs = make([]uint16, len(a.program))
	a.insts = make([]*cpu.Instruction, len(a.program))

	pc := int(a.config.Origin)
	for i, s := range a.program {
		a.addrs[i] = uint16(pc)

		switch s := s.(type) {
		case *LabelStmt:
			if err := a.bindLabel(s.Name, pc); err != nil {
				return err
			}

		case *DirectiveStmt:
			if s.Kind == Proc {
				if err := a.bindLabel(s.Name, pc); err != nil {
					return err
				}
			}
			pc += s.Size()

		case *InstrStmt:
			inst, err := a.selectInstruction(s)
			if err != nil {
				return err
			}
			a.insts[i] = inst
			pc += int(inst.Length)
			logLine(s, "%04X %02X", a.addrs[i], inst.Opcode)
		}

		if pc > 0x10000 {
			return newError(ErrNumeric, "program exceeds 64K at line %d", s.Pos().Line)
		}
	}
	return nil
}

func (a *assembler) bindLabel(name string, addr int) error {
	if _, ok := a.labels[name]; ok {
		return newError(ErrSymbol, "label %q declared more than once", name)
	}
	if addr > 0xffff {
		return newError(ErrNumeric, "label %q is bound past the end of the 64K address space", name)
	}
	a.labels[name] = uint16(addr)
	log.Debugf("label %s = $%04X", name, addr)
	return nil
}

// Select the opcode encoding an instruction statement. When illegal
// opcodes are enabled, an allow-listed unofficial variant is preferred;
// otherwise the documented variant is used.
func (a *assembler) selectInstruction(s *InstrStmt) (*cpu.Instruction, error) {
	variants := a.instSet.Find(s.Instr, s.Mode)
	if len(variants) == 0 {
		return nil, newError(ErrLegality, "instruction (%s, %s) does not exist", s.Instr, s.Mode)
	}

	if a.config.EnableNES && (s.Instr == cpu.SED || s.Instr == cpu.CLD) {
		log.WithField("line", s.Line).Warnf("%s has no effect: the NES CPU has no decimal mode", s.Instr)
	}

	var official, unofficial *cpu.Instruction
	for _, inst := range variants {
		switch {
		case inst.Official:
			if official == nil {
				official = inst
			}
		case unofficial == nil:
			unofficial = inst
		}
		if !inst.Official && a.config.AllowIllegal && a.config.AllowList.Contains(inst.Opcode) {
			return inst, nil
		}
	}

	switch {
	case official != nil:
		return official, nil
	case !a.config.AllowIllegal:
		return nil, newError(ErrLegality, "illegal opcode $%02x (%s, %s) is disabled", unofficial.Opcode, s.Instr, s.Mode)
	default:
		return nil, newError(ErrLegality, "illegal opcode $%02x (%s, %s) is not in the allow-list", unofficial.Opcode, s.Instr, s.Mode)
	}
}

// Compute the relative offset of two addresses as a
// two's-complement byte value. If the offset can't
// fit into a byte, return an error.
func relOffset(addr1, addr2 int) (byte, error) {
	diff := addr1 - addr2
	switch {
	case diff < -128 || diff > 127:
		return 0, newError(ErrSymbol, "branch offset %d is out of range [-128, 127]", diff)
	case diff >= 0:
		return byte(diff), nil
	default:
		return byte(256 + diff), nil
	}
}
