// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ctxutil reserves time for cleanup work.
package ctxutil

import (
	"context"
	"time"
)

// Shorten returns a context whose deadline is d earlier than ctx's. If ctx
// has no deadline, neither does the returned context.
func Shorten(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	dl, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, dl.Add(-d))
}

// ForCleanup returns a context that keeps ctx's values, including its logger,
// but is not canceled when ctx is. The returned context expires after d.
// Teardown uses it so that uninstalls and emulator stops still run after the
// session context was canceled by a signal.
func ForCleanup(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}
