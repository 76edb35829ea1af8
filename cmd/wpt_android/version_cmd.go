// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"go.chromium.org/wptandroid/internal/config"
	"go.chromium.org/wptandroid/internal/product"
)

// versionCmd implements subcommands.Command to print the product version.
type versionCmd struct {
	cfg    *config.MutableConfig
	reg    *product.Registry
	env    env
	stdout io.Writer
	stderr io.Writer
}

var _ = subcommands.Command(&versionCmd{})

func newVersionCmd(reg *product.Registry, e env, stdout, stderr io.Writer) *versionCmd {
	return &versionCmd{cfg: config.NewMutableConfig(reg), reg: reg, env: e, stdout: stdout, stderr: stderr}
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print the version of the product under test" }
func (*versionCmd) Usage() string {
	return `Usage: version [flag]...

Description:
    Provision devices as "run" does and print the version of the product
    installed on the first device, or "unknown". Everything is torn down
    before exiting.

Flag:
`
}

func (vc *versionCmd) SetFlags(f *flag.FlagSet) {
	vc.cfg.SetDeviceFlags(f)
}

func (vc *versionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := finishConfig(f, vc.cfg)
	if err != nil {
		fmt.Fprintf(vc.stderr, "Invalid flags: %v\n\n%s", err, vc.Usage())
		return subcommands.ExitUsageError
	}
	ctx, closeLogs, err := attachLoggers(ctx, vc.stderr, c.LogLevel(), c.LogFile())
	if err != nil {
		fmt.Fprintf(vc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLogs()

	p, err := newProduct(vc.reg, vc.env, c)
	if err != nil {
		fmt.Fprintf(vc.stderr, "Invalid flags: %v\n", err)
		return subcommands.ExitUsageError
	}
	s, err := newSession(ctx, vc.env, c, p)
	if err != nil {
		fmt.Fprintf(vc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := s.Run(ctx, func(ctx context.Context) error {
		v := s.Version(ctx)
		if v == "" {
			v = "unknown"
		}
		_, err := fmt.Fprintf(vc.stdout, "%s %s\n", p.Name(), v)
		return err
	}); err != nil {
		fmt.Fprintf(vc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
