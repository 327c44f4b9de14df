// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/beevik/term"
	"github.com/michael-0acf4/r6502/asm"
	"github.com/michael-0acf4/r6502/host"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type outputMode byte

const (
	modeBinary outputMode = iota // write the binary to disk
	modeHex                      // print the hex string
	modeParse                    // print the parsed statements
)

var modes = prefixtree.New[outputMode]()

var rootCmd = &cobra.Command{
	Use:   "r6502 file [output] [hex|parse]",
	Short: "6502 assembly compiler",
	Long: `Assemble a 6502 source file. By default the binary is written to output
(./a.bin when omitted). The hex mode prints the machine code as hex bytes
and the parse mode prints the parsed program.

Branch displacements are measured from the end of the branch instruction,
as the 6502 executes them. Older releases encoded addr+1-target instead;
pass --legacy-branch to reproduce their output byte for byte.`,
	Version: "0.0.2",
	Args:    cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		config, err := buildConfig(cmd)
		if err != nil {
			exitOnError(err)
		}
		input, output, mode, err := parseArgs(args)
		if err != nil {
			exitOnError(err)
		}
		if err := run(input, output, mode, config, getFlag(cmd, "map")); err != nil {
			exitOnError(err)
		}
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell [script ...]",
	Short: "start the interactive assembler shell",
	Long: `Start the interactive assembler shell. Commands contained in the script
files are run first, then commands are read from standard input.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		h := host.New()

		// Run commands contained in command-line files.
		for _, filename := range args {
			file, err := os.Open(filename)
			if err != nil {
				exitOnError(err)
			}
			h.RunCommands(file, os.Stdout, false)
			file.Close()
		}

		// Run commands interactively.
		h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
	},
}

//nolint:errcheck
func init() {
	modes.Add("hex", modeHex)
	modes.Add("parse", modeParse)

	rootCmd.AddCommand(shellCmd)
	rootCmd.Flags().Bool("allow-illegal", false, "emit allow-listed unofficial opcodes")
	rootCmd.Flags().String("allow", "", "comma-separated unofficial opcodes ($xx, 0xXX or decimal)")
	rootCmd.Flags().Bool("nes", true, "target the NES dialect of the 6502")
	rootCmd.Flags().String("origin", "0", "address of the first assembled byte")
	rootCmd.Flags().Bool("legacy-branch", false, "encode branch offsets as addr+1-target, as older releases did")
	rootCmd.Flags().Bool("map", false, "write a JSON source map next to the binary")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Build the assembler configuration from the command-line flags.
func buildConfig(cmd *cobra.Command) (*asm.Config, error) {
	config := asm.DefaultConfig()
	config.AllowIllegal = getFlag(cmd, "allow-illegal")
	config.EnableNES = getFlag(cmd, "nes")
	config.LegacyBranchOffsets = getFlag(cmd, "legacy-branch")

	allow, err := asm.ParseAllowList(getString(cmd, "allow"))
	if err != nil {
		return nil, err
	}
	config.AllowList = allow

	origin, err := asm.EvalString(getString(cmd, "origin"), nil)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %v", err)
	}
	config.Origin = origin.Value
	return config, nil
}

// Split the positional arguments into the input file, the output file
// and the output mode. A lone second argument naming a mode without a
// file extension selects the mode rather than the output file.
func parseArgs(args []string) (input, output string, mode outputMode, err error) {
	input, output, mode = args[0], "./a.bin", modeBinary
	switch len(args) {
	case 2:
		if m, err := modes.FindValue(strings.ToLower(args[1])); err == nil && filepath.Ext(args[1]) == "" {
			mode = m
		} else {
			output = args[1]
		}
	case 3:
		output = args[1]
		mode, err = modes.FindValue(strings.ToLower(args[2]))
		if err != nil {
			return "", "", 0, fmt.Errorf("unknown output mode '%s'", args[2])
		}
	}
	return input, output, mode, nil
}

func run(input, output string, mode outputMode, config *asm.Config, withMap bool) error {
	if mode == modeBinary {
		if _, err := asm.AssembleFile(input, output, config, withMap); err != nil {
			return err
		}
		fmt.Printf("Binary generated at %s\n", output)
		return nil
	}

	file, err := os.Open(input)
	if err != nil {
		return err
	}
	defer file.Close()

	c := asm.NewCompiler(config)
	if err := c.Load(file, input); err != nil {
		return err
	}

	switch mode {
	case modeHex:
		s, err := c.HexString()
		if err != nil {
			return err
		}
		fmt.Print(s)
	case modeParse:
		fmt.Print(c.ParseString())
	}
	return nil
}

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		exitOnError(err)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		exitOnError(err)
	}
	return r
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
