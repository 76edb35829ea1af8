// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package product

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// Registry maps product names and aliases to variants. It is built once at
// startup and passed to whatever needs it.
type Registry struct {
	byName   map[string]Variant
	variants []Variant
}

// DuplicateNameError reports two variants claiming the same name or alias.
type DuplicateNameError struct {
	Name          string
	First, Second string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("product name %q claimed by both %s and %s", e.Name, e.First, e.Second)
}

// UnknownProductError reports a name that no variant claims.
type UnknownProductError struct {
	Name  string
	Known []string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q (must be one of %s)", e.Name, strings.Join(e.Known, ", "))
}

// NewRegistry builds a registry from variants. It fails with a
// *DuplicateNameError if a name or alias is claimed twice.
func NewRegistry(variants ...Variant) (*Registry, error) {
	r := &Registry{byName: make(map[string]Variant)}
	for _, v := range variants {
		for _, n := range append([]string{v.Name()}, v.Aliases()...) {
			if prev, ok := r.byName[n]; ok {
				return nil, &DuplicateNameError{Name: n, First: prev.Name(), Second: v.Name()}
			}
			r.byName[n] = v
		}
		r.variants = append(r.variants, v)
	}
	return r, nil
}

// Lookup returns the variant claiming name. Names are case-sensitive.
func (r *Registry) Lookup(name string) (Variant, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, &UnknownProductError{Name: name, Known: r.Names()}
	}
	return v, nil
}

// Names returns every accepted name, shortest first.
func (r *Registry) Names() []string {
	names := maps.Keys(r.byName)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// Canonical maps every accepted name to its variant's canonical name.
func (r *Registry) Canonical() map[string]string {
	m := make(map[string]string, len(r.byName))
	for n, v := range r.byName {
		m[n] = v.Name()
	}
	return m
}

// Variants returns the variants in registration order.
func (r *Registry) Variants() []Variant {
	return append([]Variant(nil), r.variants...)
}
