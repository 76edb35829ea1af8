// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package device

import (
	"context"
	"testing"
	"time"

	"go.chromium.org/wptandroid/errors"
)

func TestDoAsyncResult(t *testing.T) {
	want := errors.New("closed")
	cleaned := make(chan struct{})
	if err := doAsync(context.Background(), func() error { return want }, func() { close(cleaned) }); err != want {
		t.Errorf("doAsync returned %v; want %v", err, want)
	}
	select {
	case <-cleaned:
	case <-time.After(10 * time.Second):
		t.Error("clean did not run after body failed")
	}

	if err := doAsync(context.Background(), func() error { return nil }, func() {
		t.Error("clean ran after success")
	}); err != nil {
		t.Error("doAsync failed: ", err)
	}
}

func TestDoAsyncCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	cleaned := make(chan struct{})
	go cancel()
	err := doAsync(ctx, func() error {
		<-release
		return nil
	}, func() { close(cleaned) })
	if err != context.Canceled {
		t.Errorf("doAsync returned %v; want %v", err, context.Canceled)
	}
	close(release)
	select {
	case <-cleaned:
	case <-time.After(10 * time.Second):
		t.Error("clean did not run after cancellation")
	}
}
