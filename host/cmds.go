package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A helpEntry records the descriptor of a command or command subtree for
// display by the help command.
type helpEntry struct {
	name        string
	brief       string
	description string
	usage       string
	children    []*helpEntry
}

// A commandTree pairs a command tree with its help entries.
type commandTree struct {
	tree *cmd.Tree
	help *helpEntry
	path string
}

var (
	cmds      *cmd.Tree
	helpRoot  *helpEntry
	helpIndex = make(map[string]*helpEntry)
	shortcuts = make(map[string]string)
)

func (t commandTree) addCommand(d cmd.CommandDescriptor) {
	t.tree.AddCommand(d)
	e := &helpEntry{
		name:        d.Name,
		brief:       d.Brief,
		description: d.Description,
		usage:       d.Usage,
	}
	t.help.children = append(t.help.children, e)
	helpIndex[strings.TrimSpace(t.path+" "+d.Name)] = e
}

func (t commandTree) addSubtree(d cmd.TreeDescriptor) commandTree {
	e := &helpEntry{name: d.Name, brief: d.Brief}
	t.help.children = append(t.help.children, e)
	path := strings.TrimSpace(t.path + " " + d.Name)
	helpIndex[path] = e
	return commandTree{tree: t.tree.AddSubtree(d), help: e, path: path}
}

func (t commandTree) addShortcut(name, target string) {
	t.tree.AddShortcut(name, target)
	shortcuts[name] = target
}

func init() {
	root := commandTree{
		tree: cmd.NewTree(cmd.TreeDescriptor{Name: "r6502"}),
		help: &helpEntry{name: "r6502"},
	}
	root.addCommand(cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})

	// Allow-list commands
	al := root.addSubtree(cmd.TreeDescriptor{Name: "allow", Brief: "Unofficial opcode allow-list commands"})
	al.addCommand(cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List allowed opcodes",
		Description: "List the unofficial opcodes the assembler may emit.",
		Usage:       "allow list",
		Data:        (*Host).cmdAllowList,
	})
	al.addCommand(cmd.CommandDescriptor{
		Name:  "add",
		Brief: "Allow unofficial opcodes",
		Description: "Add one or more unofficial opcodes to the allow-list." +
			" Opcodes may be written as $XX, 0xXX or decimal values. Allowed" +
			" opcodes are emitted only while the AllowIllegal setting is true.",
		Usage: "allow add <opcode> [<opcode> ...]",
		Data:  (*Host).cmdAllowAdd,
	})
	al.addCommand(cmd.CommandDescriptor{
		Name:        "remove",
		Brief:       "Disallow unofficial opcodes",
		Description: "Remove one or more opcodes from the allow-list.",
		Usage:       "allow remove <opcode> [<opcode> ...]",
		Data:        (*Host).cmdAllowRemove,
	})

	// Assemble commands
	as := root.addSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	as.addCommand(cmd.CommandDescriptor{
		Name:  "file",
		Brief: "Assemble a file from disk and save the binary to disk",
		Description: "Run the cross-assembler on the specified file," +
			" producing a binary file and source map file if successful." +
			" The binary is written next to the source with a .bin extension" +
			" unless an output file name is given.",
		Usage: "assemble file <filename> [<output>]",
		Data:  (*Host).cmdAssembleFile,
	})
	as.addCommand(cmd.CommandDescriptor{
		Name:  "interactive",
		Brief: "Start interactive assembly mode",
		Description: "Start interactive assembler mode. A new prompt will" +
			" appear, allowing you to enter assembly language instructions" +
			" interactively. Once you type END, the instructions will be" +
			" assembled and the resulting machine code displayed.",
		Usage: "assemble interactive",
		Data:  (*Host).cmdAssembleInteractive,
	})

	root.addCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble the loaded program or a binary",
		Description: "Assemble the loaded program and disassemble the" +
			" resulting machine code, one instruction per line. When a" +
			" binary file is named, its contents are disassembled instead," +
			" starting at the origin setting.",
		Usage: "disassemble [<binary>]",
		Data:  (*Host).cmdDisassemble,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:  "evaluate",
		Brief: "Evaluate an expression",
		Description: "Evaluate a mathematical expression. Variables bound by" +
			" the loaded program may be used.",
		Usage: "evaluate <expression>",
		Data:  (*Host).cmdEvaluate,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:        "hex",
		Brief:       "Display the machine code as hex",
		Description: "Assemble the loaded program and display its machine code as hexadecimal bytes.",
		Usage:       "hex",
		Data:        (*Host).cmdHex,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:        "labels",
		Brief:       "List label addresses",
		Description: "Assemble the loaded program and list its labels ordered by address.",
		Usage:       "labels",
		Data:        (*Host).cmdLabels,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:  "load",
		Brief: "Load a source file",
		Description: "Scan and parse an assembly source file, replacing the" +
			" previously loaded program. If the file name has no extension," +
			" .asm is assumed.",
		Usage: "load <filename>",
		Data:  (*Host).cmdLoad,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:        "parse",
		Brief:       "Display the parsed program",
		Description: "Display the statements of the loaded program with their resolved addressing modes.",
		Usage:       "parse",
		Data:        (*Host).cmdParse,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	root.addCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})

	// Add command shortcuts.
	root.addShortcut("a", "assemble file")
	root.addShortcut("ai", "assemble interactive")
	root.addShortcut("al", "allow list")
	root.addShortcut("aa", "allow add")
	root.addShortcut("ar", "allow remove")
	root.addShortcut("d", "disassemble")
	root.addShortcut("e", "evaluate")
	root.addShortcut("l", "load")
	root.addShortcut("?", "help")

	cmds = root.tree
	helpRoot = root.help
}
