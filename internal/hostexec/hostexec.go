// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package hostexec runs commands on the host: wptrunner, the metadata
// builder, sdkmanager and WebView channel installers.
package hostexec

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/logging"
)

// Runner runs host commands. args[0] is the program.
type Runner interface {
	// Run runs a command, streaming its output to the context logger.
	Run(ctx context.Context, args []string) error
	// Output runs a command and returns its stdout.
	Output(ctx context.Context, args []string) ([]byte, error)
}

// Exec is a Runner that starts real processes.
type Exec struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env, if non-nil, replaces the environment.
	Env []string
	// Stdout, if non-nil, receives the stdout and stderr of Run instead of
	// the context logger.
	Stdout io.Writer
}

var _ Runner = (*Exec)(nil)

func (e *Exec) command(ctx context.Context, args []string) (*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.Dir
	cmd.Env = e.Env
	logging.Debug(ctx, "Running ", CommandLine(args...))
	return cmd, nil
}

// Run implements Runner. Unless Stdout is set, every stdout and stderr line is
// logged at info level.
// A non-zero exit is returned as an error; see ExitCode.
func (e *Exec) Run(ctx context.Context, args []string) error {
	cmd, err := e.command(ctx, args)
	if err != nil {
		return err
	}
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stdout
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, "%s failed", args[0])
		}
		return nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", args[0])
	}

	var g errgroup.Group
	g.Go(func() error { return forwardLines(ctx, stdout) })
	g.Go(func() error { return forwardLines(ctx, stderr) })
	copyErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		return errors.Wrapf(err, "%s failed", args[0])
	}
	if copyErr != nil {
		return errors.Wrapf(copyErr, "failed reading output of %s", args[0])
	}
	return nil
}

// Output implements Runner. Stderr is included in the error on failure.
func (e *Exec) Output(ctx context.Context, args []string) ([]byte, error) {
	cmd, err := e.command(ctx, args)
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s", args[0], bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}

func forwardLines(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		logging.Info(ctx, sc.Text())
	}
	return sc.Err()
}

// ExitCode returns the exit status carried by err, if err came from a process
// that exited.
func ExitCode(err error) (int, bool) {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 0, false
	}
	return ee.ExitCode(), true
}
