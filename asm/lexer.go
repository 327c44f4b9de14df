package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Longest source line accepted by the lexer.
const maxLineLength = 1 << 20

var punctuation = map[byte]TokenType{
	'=': Equal,
	':': Colon,
	',': Comma,
	'#': Hash,
	'(': ParenOpen,
	')': ParenClose,
	'+': Plus,
	'-': Minus,
	'*': Mult,
	'/': Div,
}

// Tokenize scans assembly source into a token sequence. Every line is
// terminated by a Newline token and the sequence ends with an EOF token.
func Tokenize(r io.Reader) ([]Token, error) {
	var tokens []Token

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	row := 0
	for scanner.Scan() {
		row++
		line := newFstring(row, scanner.Text())
		for {
			line = line.consumeWhitespace()
			if line.isEmpty() {
				break
			}

			var t Token
			var err error
			t, line, err = scanToken(line)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)
		}
		tokens = append(tokens, line.token(Newline))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &Error{Kind: ErrSyntax, Line: row + 1, Column: 1,
				Msg: fmt.Sprintf("line exceeds %d bytes", maxLineLength)}
		}
		return nil, err
	}

	eof := Token{Type: EOF, Line: row + 1, Column: 1}
	tokens = append(tokens, eof)
	log.Debugf("scanned %d tokens from %d lines", len(tokens), row)
	return tokens, nil
}

// TokenizeString scans assembly source held in a string.
func TokenizeString(src string) ([]Token, error) {
	return Tokenize(strings.NewReader(src))
}

// Scan a single token from the start of a non-empty line.
func scanToken(l fstring) (t Token, remain fstring, err error) {
	c := l.str[0]
	switch {
	case comment(c):
		body, remain := l.consume(1).consumeWhile(anyChar)
		t = body.token(Comment)
		t.Column = l.column + 1
		return t, remain, nil

	case c == '$':
		return scanDigits(l, Hex, hexadecimal, "hexadecimal")

	case c == '%':
		return scanDigits(l, Bin, binarynum, "binary")

	case decimal(c):
		digits, remain := l.consumeWhile(decimal)
		return digits.token(Dec), remain, nil

	case c == '\'':
		rest := l.consume(1)
		if len(rest.str) < 2 || rest.str[1] != '\'' {
			return t, l, syntaxError(l.token(Char), "unterminated character literal")
		}
		t = rest.trunc(1).token(Char)
		t.Column = l.column + 1
		return t, rest.consume(2), nil

	case c == '"':
		body, rest := l.consume(1).consumeUntilChar('"')
		if rest.isEmpty() {
			return t, l, syntaxError(l.token(Str), "unterminated string")
		}
		t = body.token(Str)
		t.Column = l.column + 1
		return t, rest.consume(1), nil

	case c == '.':
		name, remain := l.consume(1).consumeWhile(identifierChar)
		if name.isEmpty() {
			return t, l, syntaxError(l.token(Directive), "directive name was expected after '.'")
		}
		t = name.token(Directive)
		t.Column = l.column + 1
		return t, remain, nil

	case identifierStartChar(c):
		ident, remain := l.consumeWhile(identifierChar)
		return ident.token(Literal), remain, nil
	}

	if tt, ok := punctuation[c]; ok {
		return l.trunc(1).token(tt), l.consume(1), nil
	}
	log.WithField("line", l.row).Debug(l.full)
	return t, l, syntaxError(l.token(Literal), "unexpected character %q", c)
}

// Scan a prefixed numeric literal, such as $ff or %0101.
func scanDigits(l fstring, tt TokenType, fn func(c byte) bool, kind string) (Token, fstring, error) {
	digits, remain := l.consume(1).consumeWhile(fn)
	if digits.isEmpty() {
		return Token{}, l, syntaxError(l.token(tt), "%s digits were expected after '%c'", kind, l.str[0])
	}
	t := digits.token(tt)
	t.Column = l.column + 1
	return t, remain, nil
}
