// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package wpt

import (
	"context"
	"os"
	"path/filepath"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/logging"
)

// Target is what a test run needs from a provisioned session.
type Target interface {
	// Name returns the canonical product name.
	Name() string
	// Expectations returns the product's own expectation files.
	Expectations() []string
	// WPTArgs returns the product arguments for the provisioned devices.
	WPTArgs(ctx context.Context) []string
}

// Adapter runs the metadata builder and wptrunner.
type Adapter struct {
	opts   *Options
	runner hostexec.Runner
}

// NewAdapter returns an Adapter. A nil runner starts real processes.
func NewAdapter(opts *Options, runner hostexec.Runner) *Adapter {
	if runner == nil {
		runner = &hostexec.Exec{}
	}
	if opts.Python == "" {
		opts.Python = "python3"
	}
	return &Adapter{opts: opts, runner: runner}
}

// exitStatus runs args and returns the process exit code.
func (a *Adapter) exitStatus(ctx context.Context, args []string) (int, error) {
	err := a.runner.Run(ctx, args)
	if err == nil {
		return 0, nil
	}
	if code, ok := hostexec.ExitCode(err); ok {
		return code, nil
	}
	return 0, err
}

// Run builds metadata into a temporary directory and then runs wptrunner
// against t. It returns the exit code of the first command that failed, or
// of wptrunner.
func (a *Adapter) Run(ctx context.Context, t Target) (int, error) {
	tmp, err := os.MkdirTemp("", "wpt_android.")
	if err != nil {
		return 0, errors.Wrap(err, "failed to create metadata directory")
	}
	defer os.RemoveAll(tmp)
	dir := filepath.Join(tmp, "metadata_dir")

	logging.Info(ctx, "Building WPT metadata")
	code, err := a.exitStatus(ctx, MetadataArgs(a.opts, t.Name(), t.Expectations(), dir))
	if err != nil {
		return 0, errors.Wrap(err, "failed to build metadata")
	}
	if code != 0 {
		logging.Warningf(ctx, "Metadata builder exited with status %d", code)
		return code, nil
	}
	// wptrunner requires the directory even if no metadata was written.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrap(err, "failed to create metadata directory")
	}

	args := RunArgs(a.opts, t.Name(), t.WPTArgs(ctx), dir)
	logging.Info(ctx, "Running ", hostexec.CommandLine(args...))
	code, err = a.exitStatus(ctx, args)
	if err != nil {
		return 0, errors.Wrap(err, "failed to run wptrunner")
	}
	logging.Infof(ctx, "wptrunner exited with status %d", code)
	return code, nil
}

// Help runs "wpt run --help" and returns its exit code.
func (a *Adapter) Help(ctx context.Context) (int, error) {
	args := []string{a.opts.wptBinary(), "--venv=" + a.opts.SrcRoot, "--skip-venv-setup", "run", "--help"}
	return a.exitStatus(ctx, args)
}
