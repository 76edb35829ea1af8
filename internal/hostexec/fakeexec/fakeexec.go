// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fakeexec provides a hostexec.Runner for unit tests.
package fakeexec

import (
	"context"
	"sync"

	"go.chromium.org/wptandroid/internal/hostexec"
)

// Runner records commands instead of running them.
type Runner struct {
	// RunFunc, if set, produces the result of Run.
	RunFunc func(args []string) error
	// OutputFunc, if set, produces the result of Output.
	OutputFunc func(args []string) ([]byte, error)

	mu    sync.Mutex
	calls [][]string
}

var _ hostexec.Runner = (*Runner)(nil)

func (r *Runner) record(args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), args...))
}

// Run implements hostexec.Runner.
func (r *Runner) Run(ctx context.Context, args []string) error {
	r.record(args)
	if r.RunFunc == nil {
		return nil
	}
	return r.RunFunc(args)
}

// Output implements hostexec.Runner.
func (r *Runner) Output(ctx context.Context, args []string) ([]byte, error) {
	r.record(args)
	if r.OutputFunc == nil {
		return nil, nil
	}
	return r.OutputFunc(args)
}

// Calls returns every recorded command line.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}
