// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package emulator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/poll"
)

// Process is an emulator instance run as a host process.
type Process struct {
	cfg  *Config
	port int

	cmd     *exec.Cmd
	logFile io.Closer
	exited  chan struct{} // closed when the process has been reaped
	waitErr error         // valid after exited is closed
	stopped bool
}

var _ Instance = (*Process)(nil)

// Serial implements Instance.
func (p *Process) Serial() string {
	return fmt.Sprintf("emulator-%d", p.port)
}

func (p *Process) args(opts StartOptions) []string {
	args := []string{
		p.cfg.emulatorPath(),
		"-avd", p.cfg.spec.AVDName,
		"-port", strconv.Itoa(p.port),
		"-no-boot-anim",
		"-no-snapshot-save",
	}
	if opts.ReadOnly {
		args = append(args, "-read-only")
	}
	if opts.WritableSystem {
		args = append(args, "-writable-system")
	}
	if !opts.Window {
		args = append(args, "-no-window", "-gpu", "swiftshader_indirect")
	}
	if ram := p.cfg.spec.Settings.RAMSizeMB; ram > 0 {
		args = append(args, "-memory", strconv.FormatUint(uint64(ram), 10))
	}
	return args
}

// Start implements Instance.
func (p *Process) Start(ctx context.Context, opts StartOptions) (retErr error) {
	if p.cmd != nil {
		return errors.Errorf("%s already started", p.Serial())
	}
	defer func() {
		if retErr != nil {
			p.cfg.releasePort(p.port)
		}
	}()

	args := p.args(opts)
	logging.Infof(ctx, "Starting %s", p.Serial())
	logging.Debug(ctx, "Running ", hostexec.CommandLine(args...))

	// Not tied to ctx: the instance must outlive cancellation until Stop.
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = p.cfg.env()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if dir := p.cfg.opts.LogDir; dir != "" {
		f, err := os.Create(filepath.Join(dir, p.Serial()+".log"))
		if err != nil {
			return errors.Wrap(err, "failed to create emulator log")
		}
		cmd.Stdout = f
		cmd.Stderr = f
		p.logFile = f
	}
	if err := cmd.Start(); err != nil {
		p.closeLog()
		return errors.Wrapf(err, "failed to start %s", p.Serial())
	}
	p.cmd = cmd
	p.exited = make(chan struct{})
	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	if err := poll.Poll(ctx, p.booted, poll.Options{
		Timeout:  p.cfg.opts.BootTimeout,
		Interval: p.cfg.opts.PollInterval,
		Clock:    p.cfg.opts.Clock,
	}); err != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.stopTimeout())
		defer cancel()
		if serr := p.Stop(cctx); serr != nil {
			logging.Warningf(ctx, "Failed to stop %s after failed boot: %v", p.Serial(), serr)
		}
		return errors.Wrapf(err, "%s did not boot", p.Serial())
	}
	logging.Infof(ctx, "%s booted", p.Serial())
	return nil
}

func (p *Process) booted(ctx context.Context) error {
	select {
	case <-p.exited:
		return poll.Break(errors.Wrap(p.waitErr, "emulator exited during boot"))
	default:
	}
	out, err := p.cfg.opts.Runner.Output(ctx, []string{p.cfg.opts.ADBPath, "-s", p.Serial(), "shell", "getprop", "sys.boot_completed"})
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(string(out)); v != "1" {
		return errors.Errorf("sys.boot_completed is %q", v)
	}
	return nil
}

// Stop implements Instance. It asks the emulator console to exit, then
// terminates the process tree, then kills the process group.
func (p *Process) Stop(ctx context.Context) error {
	if p.cmd == nil || p.stopped {
		return nil
	}
	p.stopped = true
	defer p.cfg.releasePort(p.port)
	defer p.closeLog()

	serial, pid := p.Serial(), p.cmd.Process.Pid
	logging.Infof(ctx, "Stopping %s", serial)

	if _, err := p.cfg.opts.Runner.Output(ctx, []string{p.cfg.opts.ADBPath, "-s", serial, "emu", "kill"}); err != nil {
		logging.Debugf(ctx, "emu kill on %s failed: %v", serial, err)
	}
	if p.waitExit(ctx) {
		return nil
	}

	logging.Infof(ctx, "%s still running; terminating pid %d", serial, pid)
	if err := terminateTree(ctx, int32(pid)); err != nil {
		logging.Debugf(ctx, "Failed to terminate %s: %v", serial, err)
	}
	if p.waitExit(ctx) {
		return nil
	}

	logging.Infof(ctx, "%s still running; killing process group %d", serial, pid)
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return errors.Wrapf(err, "failed to kill %s", serial)
	}
	if p.waitExit(ctx) {
		return nil
	}
	return errors.Errorf("%s (pid %d) did not exit", serial, pid)
}

// waitExit waits up to the stop grace period for the process to exit.
func (p *Process) waitExit(ctx context.Context) bool {
	select {
	case <-p.exited:
		return true
	case <-p.cfg.opts.Clock.After(p.cfg.opts.StopGrace):
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *Process) closeLog() {
	if p.logFile != nil {
		p.logFile.Close()
		p.logFile = nil
	}
}

// terminateTree sends SIGTERM to pid and its descendants, children first.
func terminateTree(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	children, _ := proc.ChildrenWithContext(ctx)
	for _, c := range children {
		if err := terminateTree(ctx, c.Pid); err != nil {
			logging.Debugf(ctx, "Failed to terminate pid %d: %v", c.Pid, err)
		}
	}
	return proc.TerminateWithContext(ctx)
}

// stopTimeout bounds how long a caller should allow for Stop.
func (c *Config) stopTimeout() time.Duration {
	return 3*c.opts.StopGrace + 5*time.Second
}
