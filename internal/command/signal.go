// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

var selfName = filepath.Base(os.Args[0])

// InstallSignalHandler handles SIGINT and SIGTERM.
//
// The first signal calls cancel, which is expected to cancel the session
// context so that installed APKs and started emulators are torn down on the
// normal exit path. A second signal terminates child processes and exits
// immediately, leaving APKs installed and emulators running.
//
// SIGKILL cannot be handled; a killed process leaks everything it started.
func InstallSignalHandler(out io.Writer, cancel func()) {
	ch := make(chan os.Signal, 2)
	go func() {
		sig := <-ch
		fmt.Fprintf(out, "\n%s: Caught %v signal; tearing down (repeat to exit now)\n", selfName, sig)
		cancel()

		sig = <-ch
		fmt.Fprintf(out, "\n%s: Caught %v signal again; exiting without teardown\n", selfName, sig)
		terminateChildren(out)
		os.Exit(1)
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}

// terminateChildren sends SIGTERM to direct children of this process, such as
// wptrunner and emulators.
func terminateChildren(out io.Writer) {
	procs, err := process.Processes()
	if err != nil {
		fmt.Fprintf(out, "Failed to list subprocesses: %v\n", err)
		return
	}
	self := int32(os.Getpid())
	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil || ppid != self {
			continue
		}
		if err := p.Terminate(); err != nil {
			fmt.Fprintf(out, "Failed to terminate pid %d: %v\n", p.Pid, err)
		}
	}
}
