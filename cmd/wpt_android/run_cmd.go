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
	"go.chromium.org/wptandroid/internal/wpt"
)

// runCmd implements subcommands.Command to provision devices and run tests.
type runCmd struct {
	cfg     *config.MutableConfig
	reg     *product.Registry
	env     env
	stderr  io.Writer
	wptHelp bool // show wptrunner's help
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd(reg *product.Registry, e env, stderr io.Writer) *runCmd {
	return &runCmd{cfg: config.NewMutableConfig(reg), reg: reg, env: e, stderr: stderr}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "provision devices and run web platform tests" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]... [test]...

Description:
    Start emulators if -avd-config is given, install the product on every
    healthy device, run wptrunner and uninstall everything again. The exit
    status is wptrunner's.

    To run WebView tests on an emulator:

        $ wpt_android run -product webview -avd-config <avd.textpb> \
            -webview-provider out/Release/apks/SystemWebView.apk \
            -webdriver-binary out/Release/clang_x64/chromedriver \
            -test-filter dom/historical.html

Flag:
`
}

func (rc *runCmd) SetFlags(f *flag.FlagSet) {
	rc.cfg.SetRunFlags(f)
	f.BoolVar(&rc.wptHelp, "wpt-help", false, "show wptrunner's help and exit")
}

func (rc *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rc.cfg.Tests = f.Args()
	c, err := finishConfig(f, rc.cfg)
	if err != nil {
		fmt.Fprintf(rc.stderr, "Invalid flags: %v\n\n%s", err, rc.Usage())
		return subcommands.ExitUsageError
	}
	ctx, closeLogs, err := attachLoggers(ctx, rc.stderr, c.LogLevel(), c.LogFile())
	if err != nil {
		fmt.Fprintf(rc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLogs()

	adapter := wpt.NewAdapter(c.WPTOptions(), rc.env.wptRunner())
	if rc.wptHelp {
		code, err := adapter.Help(ctx)
		if err != nil {
			fmt.Fprintf(rc.stderr, "ERROR: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitStatus(code)
	}

	if c.WebdriverBinary() == "" {
		fmt.Fprintf(rc.stderr, "-webdriver-binary is required\n\n%s", rc.Usage())
		return subcommands.ExitUsageError
	}
	p, err := newProduct(rc.reg, rc.env, c)
	if err != nil {
		fmt.Fprintf(rc.stderr, "Invalid flags: %v\n", err)
		return subcommands.ExitUsageError
	}

	s, err := newSession(ctx, rc.env, c, p)
	if err != nil {
		fmt.Fprintf(rc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	var code int
	if err := s.Run(ctx, func(ctx context.Context) error {
		var err error
		code, err = adapter.Run(ctx, s)
		return err
	}); err != nil {
		fmt.Fprintf(rc.stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitStatus(code)
}
