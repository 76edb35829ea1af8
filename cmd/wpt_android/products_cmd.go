// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"go.chromium.org/wptandroid/internal/product"
)

// productsCmd implements subcommands.Command to list known products.
type productsCmd struct {
	reg    *product.Registry
	stdout io.Writer
}

var _ = subcommands.Command(&productsCmd{})

func newProductsCmd(reg *product.Registry, stdout io.Writer) *productsCmd {
	return &productsCmd{reg: reg, stdout: stdout}
}

func (*productsCmd) Name() string     { return "products" }
func (*productsCmd) Synopsis() string { return "list products and their aliases" }
func (*productsCmd) Usage() string {
	return "Usage: products\n\nDescription:\n    Print every product name accepted by -product.\n"
}

func (*productsCmd) SetFlags(f *flag.FlagSet) {}

func (pc *productsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, v := range pc.reg.Variants() {
		line := v.Name()
		if as := v.Aliases(); len(as) > 0 {
			line += " (" + strings.Join(as, ", ") + ")"
		}
		if _, err := fmt.Fprintln(pc.stdout, line); err != nil {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
