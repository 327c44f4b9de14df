// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/michael-0acf4/r6502/asm"
)

type settings struct {
	AllowIllegal bool   `doc:"emit allow-listed unofficial opcodes"`
	EnableNES    bool   `doc:"target the NES dialect of the 6502"`
	LegacyBranch bool   `doc:"encode branches as addr+1-target"`
	Origin       uint16 `doc:"address of the first assembled byte"`
	Verbose      bool   `doc:"log each assembler pass"`
}

func newSettings() *settings {
	c := asm.DefaultConfig()
	return &settings{
		AllowIllegal: c.AllowIllegal,
		EnableNES:    c.EnableNES,
		LegacyBranch: c.LegacyBranchOffsets,
		Origin:       c.Origin,
		Verbose:      false,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Config builds an assembler configuration from the settings and the
// given allow-list.
func (s *settings) Config(allow *asm.AllowList) *asm.Config {
	return &asm.Config{
		EnableNES:           s.EnableNES,
		AllowIllegal:        s.AllowIllegal,
		AllowList:           allow,
		Origin:              s.Origin,
		LegacyBranchOffsets: s.LegacyBranch,
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Uint16:
			s = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			s = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) || (f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) {
		return errors.New("invalid type")
	}
	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vIn.Convert(f.typ))
	return nil
}
