// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/subcommands"

	"go.chromium.org/wptandroid/internal/config"
	"go.chromium.org/wptandroid/internal/ctxutil"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/product"
	"go.chromium.org/wptandroid/internal/resource"
	"go.chromium.org/wptandroid/internal/session"
)

// devicesCmd implements subcommands.Command to list usable devices.
type devicesCmd struct {
	cfg    *config.MutableConfig
	env    env
	stdout io.Writer
	stderr io.Writer
}

var _ = subcommands.Command(&devicesCmd{})

func newDevicesCmd(reg *product.Registry, e env, stdout, stderr io.Writer) *devicesCmd {
	return &devicesCmd{cfg: config.NewMutableConfig(reg), env: e, stdout: stdout, stderr: stderr}
}

func (*devicesCmd) Name() string     { return "devices" }
func (*devicesCmd) Synopsis() string { return "list healthy devices" }
func (*devicesCmd) Usage() string {
	return `Usage: devices [flag]...

Description:
    Print the serials of healthy devices, one per line. With -avd-config,
    emulators are started first and stopped again before exiting. Nothing is
    installed.

Flag:
`
}

func (dc *devicesCmd) SetFlags(f *flag.FlagSet) {
	dc.cfg.SetDeviceFlags(f)
}

func (dc *devicesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := finishConfig(f, dc.cfg)
	if err != nil {
		fmt.Fprintf(dc.stderr, "Invalid flags: %v\n\n%s", err, dc.Usage())
		return subcommands.ExitUsageError
	}
	ctx, closeLogs, err := attachLoggers(ctx, dc.stderr, c.LogLevel(), c.LogFile())
	if err != nil {
		fmt.Fprintf(dc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLogs()

	serials, err := dc.list(ctx, c)
	if err != nil {
		fmt.Fprintf(dc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range serials {
		fmt.Fprintln(dc.stdout, s)
	}
	return subcommands.ExitSuccess
}

func (dc *devicesCmd) list(ctx context.Context, c *config.Config) ([]string, error) {
	h, err := dc.env.host(ctx, c)
	if err != nil {
		return nil, err
	}
	emu, err := dc.env.emulators(c)
	if err != nil {
		return nil, err
	}

	st := resource.NewStack("devices")
	defer func() {
		cctx, cancel := ctxutil.ForCleanup(ctx, time.Minute)
		defer cancel()
		if err := st.Close(cctx); err != nil {
			logging.Warningf(ctx, "Teardown was incomplete: %v", err)
		}
	}()
	devs, err := session.AcquireDevices(ctx, st, h, emu, session.AcquireOptions{Count: c.Processes(), Window: c.EmulatorWindow()})
	if err != nil {
		return nil, err
	}
	return device.Serials(devs), nil
}
