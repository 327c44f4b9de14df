package asm

import (
	"io"
	"sort"

	"github.com/segmentio/encoding/json"
)

// A SourceMap describes the mapping between source code line numbers and
// assembly code addresses.
type SourceMap struct {
	Origin uint16       // Address of the first byte of code
	Size   uint32       // Size of the code in bytes
	CRC    uint32       // IEEE CRC-32 of the code
	File   string       // Source file name
	Lines  []SourceLine // Ordered by address
	Labels []Label      // Ordered by address
}

// A SourceLine represents a mapping between a machine code address and
// the source code line number used to generate it.
type SourceLine struct {
	Address int // Machine code address
	Line    int // Source code line number
}

// A Label describes a label bound to an address.
type Label struct {
	Name    string
	Address uint16
}

// Search searches the source map for a mapping with the requested address.
func (s *SourceMap) Search(addr int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.File, s.Lines[i].Line
	}
	return "", -1
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
