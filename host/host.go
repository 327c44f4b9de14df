// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the 6502
// cross-assembler.
//
// Within the host it is possible to load and parse assembly source,
// assemble it into machine code, inspect the resulting hex bytes, labels
// and disassembly, manage the allow-list of unofficial opcodes, and
// evaluate arbitrary expressions.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/michael-0acf4/r6502/asm"
	"github.com/michael-0acf4/r6502/cpu"
	"github.com/michael-0acf4/r6502/disasm"
	log "github.com/sirupsen/logrus"
)

// A Host is an interactive assembler session. It holds the loaded
// program, the assembler settings and the allow-list of unofficial
// opcodes.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection
	settings    *settings
	allowList   *asm.AllowList
	compiler    *asm.Compiler
	filename    string // name of the loaded source, if any
}

// New creates a new assembler host.
func New() *Host {
	h := &Host{
		settings:  newSettings(),
		allowList: asm.NewAllowList(),
	}
	h.compiler = asm.NewCompiler(h.settings.Config(h.allowList))
	return h
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	for {
		h.prompt("* ")

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil && h.interactive {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}
	h.flush()
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt(p string) {
	if h.interactive {
		h.printf("%s", p)
	}
}

func (h *Host) cmdAllowList(c cmd.Selection) error {
	list := h.allowList.List()
	if len(list) == 0 {
		h.println("No unofficial opcodes are allowed.")
		return nil
	}

	set := cpu.GetInstructionSet()
	h.println("Opcode  Instruction")
	h.println("------  -----------")
	for _, op := range list {
		inst := set.Lookup(op)
		h.printf("$%02X     %s %s\n", op, inst.Name, inst.Mode)
	}
	return nil
}

func (h *Host) cmdAllowAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage("allow add")
		return nil
	}

	set := cpu.GetInstructionSet()
	for _, arg := range c.Args {
		op, err := asm.ParseOpcode(arg)
		if err != nil {
			h.printf("%v\n", err)
			continue
		}
		inst := set.Lookup(op)
		if inst.Official {
			h.printf("Opcode $%02X (%s %s) is an official opcode.\n", op, inst.Name, inst.Mode)
			continue
		}
		h.allowList.Add(op)
		h.printf("Opcode $%02X (%s %s) allowed.\n", op, inst.Name, inst.Mode)
	}
	return nil
}

func (h *Host) cmdAllowRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage("allow remove")
		return nil
	}

	for _, arg := range c.Args {
		op, err := asm.ParseOpcode(arg)
		if err != nil {
			h.printf("%v\n", err)
			continue
		}
		if h.allowList.Remove(op) {
			h.printf("Opcode $%02X removed.\n", op)
		} else {
			h.printf("Opcode $%02X was not on the allow-list.\n", op)
		}
	}
	return nil
}

func (h *Host) cmdAssembleFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage("assemble file")
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}
	binFilename := replaceExt(filename, ".bin")
	if len(c.Args) >= 2 {
		binFilename = c.Args[1]
	}

	assembly, err := asm.AssembleFile(filename, binFilename, h.settings.Config(h.allowList), true)
	if err != nil {
		h.printf("Failed to assemble: %s\n", filepath.Base(filename))
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Assembled '%s' to '%s' (%d bytes).\n",
		filepath.Base(filename), filepath.Base(binFilename), len(assembly.Code))
	return nil
}

func (h *Host) cmdAssembleInteractive(c cmd.Selection) error {
	h.println("Enter assembly language instructions.")
	h.println("Type END on a line by itself to assemble.")

	var lines []string
	for {
		h.prompt("  ")
		line, err := h.getLine()
		if err != nil || strings.EqualFold(line, "end") {
			break
		}
		lines = append(lines, line)
	}

	if err := h.compiler.LoadString(strings.Join(lines, "\n")); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.filename = "<interactive>"

	assembly, _, err := h.compiler.Compile()
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Assembled %d bytes.\n", len(assembly.Code))
	if len(assembly.Code) > 0 {
		h.println(assembly.HexString())
	}
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	var assembly *asm.Assembly
	if len(c.Args) > 0 {
		assembly = h.loadBinary(c.Args[0])
	} else {
		assembly, _, _ = h.compile()
	}
	if assembly == nil {
		return nil
	}
	for _, line := range disasm.Lines(assembly.Code, assembly.Origin) {
		h.println(line)
	}
	return nil
}

// Read a previously assembled binary, placing it at the origin setting.
func (h *Host) loadBinary(filename string) *asm.Assembly {
	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	assembly := &asm.Assembly{Origin: h.settings.Origin}
	if _, err := assembly.ReadFrom(file); err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	return assembly
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage("evaluate")
		return nil
	}

	v, err := asm.EvalString(strings.Join(c.Args, " "), h.compiler.Variables())
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("%s (%d)\n", v, v.Value)
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands(helpRoot)
		return nil
	}

	key := strings.ToLower(strings.Join(c.Args, " "))
	if target, ok := shortcuts[key]; ok {
		key = target
	}
	e, ok := helpIndex[key]
	switch {
	case !ok:
		h.println("Command not found.")
	case e.children != nil:
		h.displayCommands(e)
	default:
		if e.usage != "" {
			h.printf("Syntax: %s\n\n", e.usage)
		}
		switch {
		case e.description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, e.description))
		case e.brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, e.brief))
		}
	}
	return nil
}

func (h *Host) cmdHex(c cmd.Selection) error {
	if assembly, _, ok := h.compile(); ok {
		h.println(assembly.HexString())
	}
	return nil
}

func (h *Host) cmdLabels(c cmd.Selection) error {
	_, sourceMap, ok := h.compile()
	if !ok {
		return nil
	}
	if len(sourceMap.Labels) == 0 {
		h.println("No labels.")
		return nil
	}

	h.println("Addr  Label")
	h.println("----- -----")
	for _, l := range sourceMap.Labels {
		h.printf("$%04X %s\n", l.Address, l.Name)
	}
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage("load")
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	if err := h.compiler.Load(file, filename); err != nil {
		h.printf("Failed to load '%s'.\n", filepath.Base(filename))
		h.printf("%v\n", err)
		return nil
	}
	h.filename = filename

	h.printf("Loaded '%s' (%d statements).\n", filepath.Base(filename), len(h.compiler.Program()))
	return nil
}

func (h *Host) cmdParse(c cmd.Selection) error {
	if h.filename == "" {
		h.println("No program loaded.")
		return nil
	}
	h.printf("%s", h.compiler.ParseString())
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("Exiting program")
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage("set")

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v asm.NumericValue
			v, err = asm.EvalString(value, nil)
			if err == nil {
				err = h.settings.Set(key, v.Value)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}

		h.onSettingsUpdate()
	}

	return nil
}

func (h *Host) onSettingsUpdate() {
	h.compiler.Config = h.settings.Config(h.allowList)
	if h.settings.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// Assemble the loaded program, reporting any failure to the user.
func (h *Host) compile() (*asm.Assembly, *asm.SourceMap, bool) {
	if h.filename == "" {
		h.println("No program loaded.")
		return nil, nil, false
	}
	assembly, sourceMap, err := h.compiler.Compile()
	if err != nil {
		h.printf("%v\n", err)
		return nil, nil, false
	}
	return assembly, sourceMap, true
}

func (h *Host) displayUsage(path string) {
	if e, ok := helpIndex[path]; ok && e.usage != "" {
		h.printf("Syntax: %s\n", e.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(e *helpEntry) {
	h.printf("%s commands:\n", e.name)
	for _, c := range e.children {
		if c.brief != "" {
			h.printf("    %-15s  %s\n", c.name, c.brief)
		}
	}
}
