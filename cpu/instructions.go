// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu describes the NMOS 6502 instruction set, including the
// unofficial opcodes implemented by the physical chip.
package cpu

import (
	"strings"
	"sync"
)

// Instr identifies an instruction mnemonic.
type Instr byte

// Official mnemonics, followed by the unofficial ones.
const (
	ADC Instr = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	AHX
	ALR
	ANC
	ARR
	AXS
	DCP
	HLT
	ISC
	LAS
	LAX
	RLA
	RRA
	SAX
	SHX
	SHY
	SLO
	SRE
	TAS
	XAA

	instrCount
)

var instrName = [instrCount]string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
	"AHX", "ALR", "ANC", "ARR", "AXS", "DCP", "HLT", "ISC", "LAS", "LAX",
	"RLA", "RRA", "SAX", "SHX", "SHY", "SLO", "SRE", "TAS", "XAA",
}

// Alternate names used by other assemblers for the unofficial mnemonics.
var instrAlias = map[string]Instr{
	"ASR": ALR,
	"DCM": DCP,
	"ISB": ISC,
	"INS": ISC,
	"JAM": HLT,
	"KIL": HLT,
	"LAR": LAS,
	"SBX": AXS,
	"SHA": AHX,
	"ANE": XAA,
}

var instrByName map[string]Instr

func init() {
	instrByName = make(map[string]Instr, len(instrName)+len(instrAlias))
	for i, name := range instrName {
		instrByName[name] = Instr(i)
	}
	for name, i := range instrAlias {
		instrByName[name] = i
	}
}

// String returns the all-caps mnemonic.
func (i Instr) String() string {
	if i < instrCount {
		return instrName[i]
	}
	return "???"
}

// IsBranch returns true for the eight conditional branch instructions.
func (i Instr) IsBranch() bool {
	switch i {
	case BPL, BMI, BVC, BVS, BCC, BCS, BNE, BEQ:
		return true
	default:
		return false
	}
}

// LookupInstr resolves a mnemonic, ignoring case.
func LookupInstr(name string) (Instr, bool) {
	i, ok := instrByName[strings.ToUpper(name)]
	return i, ok
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes. The accumulator form of the shift
// and rotate instructions is treated as implied.
const (
	IMPL Mode = iota // Implied (no operand)
	REL              // Relative
	IMM              // Immediate
	IND              // (Indirect)
	INDX             // (Indirect,X)
	INDY             // (Indirect),Y
	ABS              // Absolute
	ABSX             // Absolute,X
	ABSY             // Absolute,Y
	ZP               // Zero Page
	ZPX              // Zero Page,X
	ZPY              // Zero Page,Y
)

var modeName = []string{
	"IMPL", "REL", "IMM", "IND", "INDX", "INDY",
	"ABS", "ABSX", "ABSY", "ZP", "ZPX", "ZPY",
}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// OperandBytes returns the number of operand bytes encoded by the mode.
func (m Mode) OperandBytes() int {
	switch m {
	case IMPL:
		return 0
	case ABS, ABSX, ABSY, IND:
		return 2
	default:
		return 1
	}
}

// Opcode data for an (instruction, mode) pair
type opcodeData struct {
	sym    Instr // instruction mnemonic
	mode   Mode  // addressing mode
	opcode byte  // opcode hex value
	length byte  // length of opcode + operand in bytes
}

// All documented (instruction, mode) pairs
var data = []opcodeData{
	{LDA, IMM, 0xa9, 2},
	{LDA, ZP, 0xa5, 2},
	{LDA, ZPX, 0xb5, 2},
	{LDA, ABS, 0xad, 3},
	{LDA, ABSX, 0xbd, 3},
	{LDA, ABSY, 0xb9, 3},
	{LDA, INDX, 0xa1, 2},
	{LDA, INDY, 0xb1, 2},

	{LDX, IMM, 0xa2, 2},
	{LDX, ZP, 0xa6, 2},
	{LDX, ZPY, 0xb6, 2},
	{LDX, ABS, 0xae, 3},
	{LDX, ABSY, 0xbe, 3},

	{LDY, IMM, 0xa0, 2},
	{LDY, ZP, 0xa4, 2},
	{LDY, ZPX, 0xb4, 2},
	{LDY, ABS, 0xac, 3},
	{LDY, ABSX, 0xbc, 3},

	{STA, ZP, 0x85, 2},
	{STA, ZPX, 0x95, 2},
	{STA, ABS, 0x8d, 3},
	{STA, ABSX, 0x9d, 3},
	{STA, ABSY, 0x99, 3},
	{STA, INDX, 0x81, 2},
	{STA, INDY, 0x91, 2},

	{STX, ZP, 0x86, 2},
	{STX, ZPY, 0x96, 2},
	{STX, ABS, 0x8e, 3},

	{STY, ZP, 0x84, 2},
	{STY, ZPX, 0x94, 2},
	{STY, ABS, 0x8c, 3},

	{ADC, IMM, 0x69, 2},
	{ADC, ZP, 0x65, 2},
	{ADC, ZPX, 0x75, 2},
	{ADC, ABS, 0x6d, 3},
	{ADC, ABSX, 0x7d, 3},
	{ADC, ABSY, 0x79, 3},
	{ADC, INDX, 0x61, 2},
	{ADC, INDY, 0x71, 2},

	{SBC, IMM, 0xe9, 2},
	{SBC, ZP, 0xe5, 2},
	{SBC, ZPX, 0xf5, 2},
	{SBC, ABS, 0xed, 3},
	{SBC, ABSX, 0xfd, 3},
	{SBC, ABSY, 0xf9, 3},
	{SBC, INDX, 0xe1, 2},
	{SBC, INDY, 0xf1, 2},

	{CMP, IMM, 0xc9, 2},
	{CMP, ZP, 0xc5, 2},
	{CMP, ZPX, 0xd5, 2},
	{CMP, ABS, 0xcd, 3},
	{CMP, ABSX, 0xdd, 3},
	{CMP, ABSY, 0xd9, 3},
	{CMP, INDX, 0xc1, 2},
	{CMP, INDY, 0xd1, 2},

	{CPX, IMM, 0xe0, 2},
	{CPX, ZP, 0xe4, 2},
	{CPX, ABS, 0xec, 3},

	{CPY, IMM, 0xc0, 2},
	{CPY, ZP, 0xc4, 2},
	{CPY, ABS, 0xcc, 3},

	{BIT, ZP, 0x24, 2},
	{BIT, ABS, 0x2c, 3},

	{CLC, IMPL, 0x18, 1},
	{SEC, IMPL, 0x38, 1},
	{CLI, IMPL, 0x58, 1},
	{SEI, IMPL, 0x78, 1},
	{CLD, IMPL, 0xd8, 1},
	{SED, IMPL, 0xf8, 1},
	{CLV, IMPL, 0xb8, 1},

	{BCC, REL, 0x90, 2},
	{BCS, REL, 0xb0, 2},
	{BEQ, REL, 0xf0, 2},
	{BNE, REL, 0xd0, 2},
	{BMI, REL, 0x30, 2},
	{BPL, REL, 0x10, 2},
	{BVC, REL, 0x50, 2},
	{BVS, REL, 0x70, 2},

	{BRK, IMPL, 0x00, 1},

	{AND, IMM, 0x29, 2},
	{AND, ZP, 0x25, 2},
	{AND, ZPX, 0x35, 2},
	{AND, ABS, 0x2d, 3},
	{AND, ABSX, 0x3d, 3},
	{AND, ABSY, 0x39, 3},
	{AND, INDX, 0x21, 2},
	{AND, INDY, 0x31, 2},

	{ORA, IMM, 0x09, 2},
	{ORA, ZP, 0x05, 2},
	{ORA, ZPX, 0x15, 2},
	{ORA, ABS, 0x0d, 3},
	{ORA, ABSX, 0x1d, 3},
	{ORA, ABSY, 0x19, 3},
	{ORA, INDX, 0x01, 2},
	{ORA, INDY, 0x11, 2},

	{EOR, IMM, 0x49, 2},
	{EOR, ZP, 0x45, 2},
	{EOR, ZPX, 0x55, 2},
	{EOR, ABS, 0x4d, 3},
	{EOR, ABSX, 0x5d, 3},
	{EOR, ABSY, 0x59, 3},
	{EOR, INDX, 0x41, 2},
	{EOR, INDY, 0x51, 2},

	{INC, ZP, 0xe6, 2},
	{INC, ZPX, 0xf6, 2},
	{INC, ABS, 0xee, 3},
	{INC, ABSX, 0xfe, 3},

	{DEC, ZP, 0xc6, 2},
	{DEC, ZPX, 0xd6, 2},
	{DEC, ABS, 0xce, 3},
	{DEC, ABSX, 0xde, 3},

	{INX, IMPL, 0xe8, 1},
	{INY, IMPL, 0xc8, 1},

	{DEX, IMPL, 0xca, 1},
	{DEY, IMPL, 0x88, 1},

	{JMP, ABS, 0x4c, 3},
	{JMP, IND, 0x6c, 3},

	{JSR, ABS, 0x20, 3},
	{RTS, IMPL, 0x60, 1},

	{RTI, IMPL, 0x40, 1},

	{NOP, IMPL, 0xea, 1},

	{TAX, IMPL, 0xaa, 1},
	{TXA, IMPL, 0x8a, 1},
	{TAY, IMPL, 0xa8, 1},
	{TYA, IMPL, 0x98, 1},
	{TXS, IMPL, 0x9a, 1},
	{TSX, IMPL, 0xba, 1},

	{PHA, IMPL, 0x48, 1},
	{PLA, IMPL, 0x68, 1},
	{PHP, IMPL, 0x08, 1},
	{PLP, IMPL, 0x28, 1},

	{ASL, IMPL, 0x0a, 1},
	{ASL, ZP, 0x06, 2},
	{ASL, ZPX, 0x16, 2},
	{ASL, ABS, 0x0e, 3},
	{ASL, ABSX, 0x1e, 3},

	{LSR, IMPL, 0x4a, 1},
	{LSR, ZP, 0x46, 2},
	{LSR, ZPX, 0x56, 2},
	{LSR, ABS, 0x4e, 3},
	{LSR, ABSX, 0x5e, 3},

	{ROL, IMPL, 0x2a, 1},
	{ROL, ZP, 0x26, 2},
	{ROL, ZPX, 0x36, 2},
	{ROL, ABS, 0x2e, 3},
	{ROL, ABSX, 0x3e, 3},

	{ROR, IMPL, 0x6a, 1},
	{ROR, ZP, 0x66, 2},
	{ROR, ZPX, 0x76, 2},
	{ROR, ABS, 0x6e, 3},
	{ROR, ABSX, 0x7e, 3},
}

// Undocumented opcodes. Together with the documented ones they cover all
// 256 opcode values.
var unofficialData = []opcodeData{
	{HLT, IMPL, 0x02, 1},
	{HLT, IMPL, 0x12, 1},
	{HLT, IMPL, 0x22, 1},
	{HLT, IMPL, 0x32, 1},
	{HLT, IMPL, 0x42, 1},
	{HLT, IMPL, 0x52, 1},
	{HLT, IMPL, 0x62, 1},
	{HLT, IMPL, 0x72, 1},
	{HLT, IMPL, 0x92, 1},
	{HLT, IMPL, 0xb2, 1},
	{HLT, IMPL, 0xd2, 1},
	{HLT, IMPL, 0xf2, 1},

	{NOP, IMPL, 0x1a, 1},
	{NOP, IMPL, 0x3a, 1},
	{NOP, IMPL, 0x5a, 1},
	{NOP, IMPL, 0x7a, 1},
	{NOP, IMPL, 0xda, 1},
	{NOP, IMPL, 0xfa, 1},
	{NOP, IMM, 0x80, 2},
	{NOP, IMM, 0x82, 2},
	{NOP, IMM, 0x89, 2},
	{NOP, IMM, 0xc2, 2},
	{NOP, IMM, 0xe2, 2},
	{NOP, ZP, 0x04, 2},
	{NOP, ZP, 0x44, 2},
	{NOP, ZP, 0x64, 2},
	{NOP, ZPX, 0x14, 2},
	{NOP, ZPX, 0x34, 2},
	{NOP, ZPX, 0x54, 2},
	{NOP, ZPX, 0x74, 2},
	{NOP, ZPX, 0xd4, 2},
	{NOP, ZPX, 0xf4, 2},
	{NOP, ABS, 0x0c, 3},
	{NOP, ABSX, 0x1c, 3},
	{NOP, ABSX, 0x3c, 3},
	{NOP, ABSX, 0x5c, 3},
	{NOP, ABSX, 0x7c, 3},
	{NOP, ABSX, 0xdc, 3},
	{NOP, ABSX, 0xfc, 3},

	{SLO, INDX, 0x03, 2},
	{SLO, ZP, 0x07, 2},
	{SLO, ABS, 0x0f, 3},
	{SLO, INDY, 0x13, 2},
	{SLO, ZPX, 0x17, 2},
	{SLO, ABSY, 0x1b, 3},
	{SLO, ABSX, 0x1f, 3},

	{RLA, INDX, 0x23, 2},
	{RLA, ZP, 0x27, 2},
	{RLA, ABS, 0x2f, 3},
	{RLA, INDY, 0x33, 2},
	{RLA, ZPX, 0x37, 2},
	{RLA, ABSY, 0x3b, 3},
	{RLA, ABSX, 0x3f, 3},

	{SRE, INDX, 0x43, 2},
	{SRE, ZP, 0x47, 2},
	{SRE, ABS, 0x4f, 3},
	{SRE, INDY, 0x53, 2},
	{SRE, ZPX, 0x57, 2},
	{SRE, ABSY, 0x5b, 3},
	{SRE, ABSX, 0x5f, 3},

	{RRA, INDX, 0x63, 2},
	{RRA, ZP, 0x67, 2},
	{RRA, ABS, 0x6f, 3},
	{RRA, INDY, 0x73, 2},
	{RRA, ZPX, 0x77, 2},
	{RRA, ABSY, 0x7b, 3},
	{RRA, ABSX, 0x7f, 3},

	{SAX, INDX, 0x83, 2},
	{SAX, ZP, 0x87, 2},
	{SAX, ABS, 0x8f, 3},
	{SAX, ZPY, 0x97, 2},

	{LAX, INDX, 0xa3, 2},
	{LAX, ZP, 0xa7, 2},
	{LAX, IMM, 0xab, 2},
	{LAX, ABS, 0xaf, 3},
	{LAX, INDY, 0xb3, 2},
	{LAX, ZPY, 0xb7, 2},
	{LAX, ABSY, 0xbf, 3},

	{DCP, INDX, 0xc3, 2},
	{DCP, ZP, 0xc7, 2},
	{DCP, ABS, 0xcf, 3},
	{DCP, INDY, 0xd3, 2},
	{DCP, ZPX, 0xd7, 2},
	{DCP, ABSY, 0xdb, 3},
	{DCP, ABSX, 0xdf, 3},

	{ISC, INDX, 0xe3, 2},
	{ISC, ZP, 0xe7, 2},
	{ISC, ABS, 0xef, 3},
	{ISC, INDY, 0xf3, 2},
	{ISC, ZPX, 0xf7, 2},
	{ISC, ABSY, 0xfb, 3},
	{ISC, ABSX, 0xff, 3},

	{ANC, IMM, 0x0b, 2},
	{ANC, IMM, 0x2b, 2},
	{ALR, IMM, 0x4b, 2},
	{ARR, IMM, 0x6b, 2},
	{XAA, IMM, 0x8b, 2},
	{AXS, IMM, 0xcb, 2},
	{SBC, IMM, 0xeb, 2},

	{AHX, INDY, 0x93, 2},
	{AHX, ABSY, 0x9f, 3},
	{TAS, ABSY, 0x9b, 3},
	{SHY, ABSX, 0x9c, 3},
	{SHX, ABSY, 0x9e, 3},
	{LAS, ABSY, 0xbb, 3},
}

// An Instruction describes a CPU instruction, including its mnemonic, its
// addressing mode, its opcode value and its encoded length.
type Instruction struct {
	Name     string // all-caps name of the instruction
	Instr    Instr  // mnemonic identity
	Mode     Mode   // addressing mode
	Opcode   byte   // hexadecimal opcode value
	Length   byte   // combined size of opcode and operand, in bytes
	Official bool   // false for undocumented opcodes
}

type variantKey struct {
	instr Instr
	mode  Mode
}

// An InstructionSet defines the set of all 256 opcodes of the 6502.
type InstructionSet struct {
	instructions [256]Instruction             // all instructions by opcode
	variants     map[variantKey][]*Instruction // opcodes of each (instr, mode) pair
	byInstr      map[Instr][]*Instruction      // opcodes of each instruction
}

// Lookup retrieves the instruction corresponding to the requested opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all opcodes implementing the instruction, in
// any addressing mode.
func (s *InstructionSet) GetInstructions(i Instr) []*Instruction {
	return s.byInstr[i]
}

// Find returns the opcodes implementing the instruction in the requested
// addressing mode. The documented opcode, if any, comes first.
func (s *InstructionSet) Find(i Instr, m Mode) []*Instruction {
	return s.variants[variantKey{i, m}]
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		variants: make(map[variantKey][]*Instruction),
		byInstr:  make(map[Instr][]*Instruction),
	}

	add := func(d opcodeData, official bool) {
		inst := &set.instructions[d.opcode]
		if inst.Name != "" {
			panic("duplicate opcode")
		}
		inst.Name = d.sym.String()
		inst.Instr = d.sym
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = d.length
		inst.Official = official

		key := variantKey{d.sym, d.mode}
		set.variants[key] = append(set.variants[key], inst)
		set.byInstr[d.sym] = append(set.byInstr[d.sym], inst)
	}

	// Documented opcodes are added first so that they lead every variant
	// list.
	for _, d := range data {
		add(d, true)
	}
	for _, d := range unofficialData {
		add(d, false)
	}

	for i := 0; i < 256; i++ {
		if set.instructions[i].Name == "" {
			panic("missing instruction")
		}
	}
	return set
}

var (
	instructionSet     *InstructionSet
	instructionSetOnce sync.Once
)

// GetInstructionSet returns the 6502 instruction set. The set is built on
// first use and is read-only afterwards.
func GetInstructionSet() *InstructionSet {
	instructionSetOnce.Do(func() {
		instructionSet = newInstructionSet()
	})
	return instructionSet
}
