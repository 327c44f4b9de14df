// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a 6502 cross-assembler. Source text is scanned
// into tokens, parsed into a program of statements, laid out in memory
// by a first pass that binds labels, and encoded by a second pass that
// substitutes label references and emits opcode bytes.
package asm

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/michael-0acf4/r6502/cpu"
	log "github.com/sirupsen/logrus"
)

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	config      *Config             // assembly options
	instSet     *cpu.InstructionSet // instruction set consulted for legality
	r           io.Reader           // the reader passed to Assemble
	tokens      []Token             // scanned tokens
	program     Program             // parsed statements
	vars        Variables           // variable -> expression
	labels      map[string]uint16   // label -> address
	addrs       []uint16            // address of each statement
	insts       []*cpu.Instruction  // selected opcode of each instruction statement
	code        []byte              // generated machine code
	sourceLines []SourceLine        // source code line mappings
}

// Assembly contains the assembled machine code and other data associated with
// the machine code.
type Assembly struct {
	Origin uint16            // Address of the first byte of code
	Code   []byte            // Assembled machine code
	Labels map[string]uint16 // Label addresses
}

// ReadFrom replaces the machine code with the contents of a previously
// written binary. Labels are not stored in binaries and are cleared.
func (a *Assembly) ReadFrom(r io.Reader) (n int64, err error) {
	code, err := io.ReadAll(r)
	n = int64(len(code))
	if err != nil {
		return n, err
	}
	if int(a.Origin)+len(code) > 0x10000 {
		return n, newError(ErrNumeric, "%d bytes at $%04X exceed 64K", n, a.Origin)
	}
	a.Code, a.Labels = code, nil
	return n, nil
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// HexString returns the machine code as lowercase two-digit hex values
// separated by spaces.
func (a *Assembly) HexString() string {
	return byteString(a.Code)
}

func newAssembler(config *Config) *assembler {
	if config == nil {
		config = DefaultConfig()
	}
	return &assembler{
		config:  config,
		instSet: cpu.GetInstructionSet(),
		labels:  make(map[string]uint16),
	}
}

// Execute assembler steps, breaking if an error is encountered
// in any one of them.
func (a *assembler) run(steps ...func(a *assembler) error) error {
	for _, step := range steps {
		if err := step(a); err != nil {
			return err
		}
	}
	return nil
}

// Assemble reads data from the provided stream and attempts to assemble it
// into 6502 byte code.
func Assemble(r io.Reader, filename string, config *Config) (*Assembly, *SourceMap, error) {
	a := newAssembler(config)
	a.r = r

	// Assembly consists of the following steps
	err := a.run(
		(*assembler).tokenize,        // Scan the source into tokens
		(*assembler).parse,           // Parse tokens into statements
		(*assembler).assignAddresses, // Assign addresses and bind labels
		(*assembler).generateCode,    // Generate the machine code
	)
	if err != nil {
		return nil, nil, err
	}
	return a.assembly(), a.sourceMap(filename), nil
}

// AssembleFile reads a file containing 6502 assembly code, assembles it,
// and writes the binary to outPath. When withMap is set, a source map is
// written alongside the binary with a .map extension.
func AssembleFile(path, outPath string, config *Config, withMap bool) (*Assembly, error) {
	inFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, config)
	if err != nil {
		return nil, err
	}

	if err := writeFile(outPath, assembly); err != nil {
		return nil, err
	}

	if withMap {
		ext := filepath.Ext(outPath)
		mapPath := outPath[:len(outPath)-len(ext)] + ".map"
		if err := writeFile(mapPath, sourceMap); err != nil {
			return nil, err
		}
		log.Infof("Source map written to %s", mapPath)
	}
	return assembly, nil
}

func writeFile(path string, wt io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = wt.WriteTo(file)
	return err
}

func (a *assembler) tokenize() error {
	logSection("Scanning source")
	tokens, err := Tokenize(a.r)
	a.tokens = tokens
	return err
}

func (a *assembler) parse() error {
	logSection("Parsing statements")
	prog, vars, err := Parse(a.tokens)
	a.program, a.vars = prog, vars
	return err
}

func (a *assembler) assembly() *Assembly {
	labels := make(map[string]uint16, len(a.labels))
	for k, v := range a.labels {
		labels[k] = v
	}
	return &Assembly{
		Origin: a.config.Origin,
		Code:   a.code,
		Labels: labels,
	}
}

func (a *assembler) sourceMap(filename string) *SourceMap {
	labels := make([]Label, 0, len(a.labels))
	for name, addr := range a.labels {
		labels = append(labels, Label{Name: name, Address: addr})
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Address != labels[j].Address {
			return labels[i].Address < labels[j].Address
		}
		return labels[i].Name < labels[j].Name
	})

	return &SourceMap{
		Origin: a.config.Origin,
		Size:   uint32(len(a.code)),
		CRC:    crc32.ChecksumIEEE(a.code),
		File:   filename,
		Lines:  a.sourceLines,
		Labels: labels,
	}
}

//
// Compiler
//

// A Compiler holds a parsed program so that it can be rendered, inspected
// and assembled repeatedly under a changing configuration.
type Compiler struct {
	Config   *Config
	filename string
	program  Program
	vars     Variables
}

// NewCompiler creates a compiler using the given configuration. A nil
// configuration selects DefaultConfig.
func NewCompiler(config *Config) *Compiler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Compiler{Config: config}
}

// Load scans and parses source code, replacing any previously loaded
// program.
func (c *Compiler) Load(r io.Reader, filename string) error {
	a := newAssembler(c.Config)
	a.r = r
	if err := a.run((*assembler).tokenize, (*assembler).parse); err != nil {
		return err
	}
	c.filename, c.program, c.vars = filename, a.program, a.vars
	return nil
}

// LoadString scans and parses source code held in a string.
func (c *Compiler) LoadString(src string) error {
	return c.Load(strings.NewReader(src), "")
}

// Program returns the loaded program.
func (c *Compiler) Program() Program {
	return c.program
}

// Variables returns the variables bound by the loaded program.
func (c *Compiler) Variables() Variables {
	return c.vars
}

// Compile resolves labels and encodes the loaded program.
func (c *Compiler) Compile() (*Assembly, *SourceMap, error) {
	a := newAssembler(c.Config)
	a.program, a.vars = c.program, c.vars
	err := a.run((*assembler).assignAddresses, (*assembler).generateCode)
	if err != nil {
		return nil, nil, err
	}
	return a.assembly(), a.sourceMap(c.filename), nil
}

// ByteCode returns the machine code of the loaded program.
func (c *Compiler) ByteCode() ([]byte, error) {
	assembly, _, err := c.Compile()
	if err != nil {
		return nil, err
	}
	return assembly.Code, nil
}

// HexString returns the machine code of the loaded program as lowercase,
// space-separated hex bytes.
func (c *Compiler) HexString() (string, error) {
	assembly, _, err := c.Compile()
	if err != nil {
		return "", err
	}
	return assembly.HexString(), nil
}

// ParseString renders the loaded program's statements, one per line.
func (c *Compiler) ParseString() string {
	return c.program.String()
}

//
// logging
//

// Log a section header at debug level.
func logSection(name string) {
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debug(strings.Repeat("-", len(name)+6))
		log.Debugf("-- %s --", name)
		log.Debug(strings.Repeat("-", len(name)+6))
	}
}

// Log a statement and a detail message at debug level.
func logLine(s Statement, format string, args ...any) {
	if log.IsLevelEnabled(log.DebugLevel) {
		detail := fmt.Sprintf(format, args...)
		log.Debugf("%-3d %-3d | %-20s | %s", s.Pos().Line, s.Pos().Column, detail, s)
	}
}

// Log a series of bytes with starting address at debug level.
func logBytes(addr int, b []byte) {
	if log.IsLevelEnabled(log.DebugLevel) {
		for i, n := 0, len(b); i < n; i += 3 {
			j := min(i+3, n)
			log.Debugf("%04X-*  %s", addr+i, byteString(b[i:j]))
		}
	}
}
