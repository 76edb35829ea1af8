// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"sort"
	"strings"
)

// RepeatedFlag is a flag.Value collecting every occurrence of a flag, such as
// "-apk a.apk -apk b.apk", in order.
type RepeatedFlag []string

func (f *RepeatedFlag) String() string { return strings.Join(*f, " ") }

// Set appends v.
func (f *RepeatedFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// ListFlag is a flag.Value holding a separator-delimited list, such as
// "-test-filter a.html::b.html".
type ListFlag struct {
	sep    string
	assign func([]string)
	def    []string
}

// NewListFlag returns a ListFlag splitting on sep and passing the result to
// assign. def is assigned immediately.
func NewListFlag(sep string, assign func([]string), def []string) *ListFlag {
	assign(def)
	return &ListFlag{sep: sep, assign: assign, def: def}
}

func (f *ListFlag) String() string { return strings.Join(f.def, f.sep) }

// Set splits v and assigns the non-empty parts.
func (f *ListFlag) Set(v string) error {
	var parts []string
	for _, p := range strings.Split(v, f.sep) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	f.assign(parts)
	return nil
}

// EnumFlag is a flag.Value that only accepts a fixed set of names, for
// example product names and their aliases.
type EnumFlag struct {
	valid  map[string]string // accepted value to canonical value
	assign func(canonical string)
	def    string
}

// NewEnumFlag returns an EnumFlag. valid maps each accepted value to the
// canonical value passed to assign. def, if non-empty, is set immediately.
func NewEnumFlag(valid map[string]string, assign func(string), def string) *EnumFlag {
	f := &EnumFlag{valid: valid, assign: assign, def: def}
	if def != "" {
		if err := f.Set(def); err != nil {
			panic(err)
		}
	}
	return f
}

// QuotedValues returns the accepted values, quoted, sorted and
// comma-separated.
func (f *EnumFlag) QuotedValues() string {
	var qs []string
	for v := range f.valid {
		qs = append(qs, fmt.Sprintf("%q", v))
	}
	sort.Strings(qs)
	return strings.Join(qs, ", ")
}

func (f *EnumFlag) String() string { return f.def }

// Set assigns the canonical value for v.
func (f *EnumFlag) Set(v string) error {
	c, ok := f.valid[v]
	if !ok {
		return fmt.Errorf("must be in %s", f.QuotedValues())
	}
	f.assign(c)
	return nil
}
