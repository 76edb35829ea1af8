// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package resource tracks acquired resources and releases them in reverse
// order.
//
// A Stack corresponds to one scope of a test session. Every successful
// acquisition (an emulator start, an APK install, a WebView provider switch,
// a device registration) pushes its paired release. Closing the stack runs
// the releases last-in first-out:
//
//	st := resource.NewStack("session")
//	defer st.Close(ctx)
//	if err := st.Acquire(ctx, "install a.apk", install, uninstall); err != nil {
//		return err
//	}
//
// Nest creates a child scope that is released as a single entry of its
// parent, so ordering stays LIFO across nested scopes.
//
// A Stack is not safe for concurrent use.
package resource

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/logging"
)

// ReleaseFunc undoes an acquisition.
type ReleaseFunc func(ctx context.Context) error

type entry struct {
	desc    string
	release ReleaseFunc
}

// Stack is a LIFO list of pending releases.
type Stack struct {
	name    string
	entries []entry
	closed  bool
}

// NewStack returns an empty stack. name appears in log messages.
func NewStack(name string) *Stack {
	return &Stack{name: name}
}

// Len returns the number of pending releases.
func (st *Stack) Len() int {
	return len(st.entries)
}

// Push records release for a resource that has already been acquired.
// It panics if st was closed, since the release could never run.
func (st *Stack) Push(desc string, release ReleaseFunc) {
	if st.closed {
		panic(fmt.Sprintf("resource: push of %q to closed stack %q", desc, st.name))
	}
	st.entries = append(st.entries, entry{desc: desc, release: release})
}

// Acquire calls acquire and, if it succeeds, pushes release. A failed
// acquisition pushes nothing.
func (st *Stack) Acquire(ctx context.Context, desc string, acquire func(ctx context.Context) error, release ReleaseFunc) error {
	logging.Debugf(ctx, "Acquiring %s", desc)
	if err := acquire(ctx); err != nil {
		return errors.Wrapf(err, "failed to %s", desc)
	}
	st.Push(desc, release)
	return nil
}

// Nest returns a child stack whose Close is pushed onto st as one entry.
func (st *Stack) Nest(name string) *Stack {
	child := NewStack(name)
	st.Push(name, child.Close)
	return child
}

// Close runs pending releases in reverse order of acquisition. Every release
// runs at most once, even if Close is called again. A failing release is
// logged as a warning and the remaining releases still run; the failures are
// returned together.
func (st *Stack) Close(ctx context.Context) error {
	st.closed = true
	var merr *multierror.Error
	for len(st.entries) > 0 {
		e := st.entries[len(st.entries)-1]
		st.entries = st.entries[:len(st.entries)-1]
		logging.Debugf(ctx, "Releasing %s", e.desc)
		if err := e.release(ctx); err != nil {
			logging.Warningf(ctx, "Failed to release %s: %v", e.desc, err)
			merr = multierror.Append(merr, errors.Wrapf(err, "release %s", e.desc))
		}
	}
	return merr.ErrorOrNil()
}
