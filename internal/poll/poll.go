// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package poll repeats a check until it succeeds or time runs out.
package poll

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"

	"go.chromium.org/wptandroid/errors"
)

const defaultInterval = time.Second

// Options controls Poll.
type Options struct {
	// Timeout bounds the whole poll. Zero means only ctx bounds it.
	Timeout time.Duration
	// Interval is the pause between attempts. Zero means one second.
	Interval time.Duration
	// Clock drives timeouts and pauses. Nil means the real clock.
	Clock clock.Clock
}

type breakError struct{ err error }

func (b *breakError) Error() string { return b.err.Error() }

// Break wraps err so that Poll returns it immediately instead of retrying.
func Break(err error) error {
	return &breakError{err}
}

// Poll calls f until it returns nil, f returns an error made by Break, the
// timeout elapses or ctx is done. On timeout the last error of f is wrapped in
// the returned error.
func Poll(ctx context.Context, f func(context.Context) error, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewClock()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	var expired <-chan time.Time
	if opts.Timeout > 0 {
		t := clk.NewTimer(opts.Timeout)
		defer t.Stop()
		expired = t.C()
	}

	for {
		err := f(ctx)
		if err == nil {
			return nil
		}
		if b, ok := err.(*breakError); ok {
			return b.err
		}
		select {
		case <-clk.After(interval):
		case <-expired:
			return errors.Wrapf(err, "timed out after %v; last error follows", opts.Timeout)
		case <-ctx.Done():
			return errors.Wrapf(err, "%v; last error follows", ctx.Err())
		}
	}
}
