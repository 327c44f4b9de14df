package asm

import "fmt"

// A TokenType identifies the lexical class of a token.
type TokenType byte

// Token types produced by the lexer.
const (
	Literal    TokenType = iota // identifier or mnemonic
	Hex                         // $ff
	Dec                         // 255
	Bin                         // %1010
	Char                        // 'a'
	Str                         // "text"
	Directive                   // .byte
	Equal                       // =
	Colon                       // :
	Comma                       // ,
	Hash                        // #
	ParenOpen                   // (
	ParenClose                  // )
	Plus                        // +
	Minus                       // -
	Mult                        // *
	Div                         // /
	Newline
	Comment
	EOF
)

var tokenTypeName = []string{
	"literal", "hex number", "decimal number", "binary number", "char",
	"string", "directive", "'='", "':'", "','", "'#'", "'('", "')'", "'+'",
	"'-'", "'*'", "'/'", "newline", "comment", "end of file",
}

func (tt TokenType) String() string {
	if int(tt) < len(tokenTypeName) {
		return tokenTypeName[tt]
	}
	return "unknown"
}

func (tt TokenType) isNumber() bool {
	return tt == Hex || tt == Dec || tt == Bin || tt == Char
}

func (tt TokenType) isEnd() bool {
	return tt == Newline || tt == Comment || tt == EOF
}

func (tt TokenType) isOperator() bool {
	return tt == Plus || tt == Minus || tt == Mult || tt == Div
}

// A Token is a lexical atom of assembly source. Text holds the token's
// payload without prefixes or quotes. Line and Column are 1-based.
type Token struct {
	Type   TokenType
	Text   string
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Type {
	case Literal, Str:
		return fmt.Sprintf("%s %q", t.Type, t.Text)
	case Hex:
		return fmt.Sprintf("%s $%s", t.Type, t.Text)
	case Bin:
		return fmt.Sprintf("%s %%%s", t.Type, t.Text)
	case Dec:
		return fmt.Sprintf("%s %s", t.Type, t.Text)
	case Char:
		return fmt.Sprintf("%s '%s'", t.Type, t.Text)
	case Directive:
		return fmt.Sprintf("%s .%s", t.Type, t.Text)
	default:
		return t.Type.String()
	}
}
