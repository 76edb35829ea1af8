// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ctxutil

import (
	"context"
	"testing"
	"time"
)

type key struct{}

func TestShorten(t *testing.T) {
	dl := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), dl)
	defer cancel()

	sctx, scancel := Shorten(ctx, time.Minute)
	defer scancel()
	got, ok := sctx.Deadline()
	if !ok {
		t.Fatal("Shortened context has no deadline")
	}
	if want := dl.Add(-time.Minute); !got.Equal(want) {
		t.Errorf("Deadline = %v; want %v", got, want)
	}

	nctx, ncancel := Shorten(context.Background(), time.Minute)
	defer ncancel()
	if _, ok := nctx.Deadline(); ok {
		t.Error("Shorten added a deadline to a context without one")
	}
}

func TestForCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	cancel()

	cctx, ccancel := ForCleanup(ctx, time.Minute)
	defer ccancel()
	if err := cctx.Err(); err != nil {
		t.Errorf("Cleanup context is already done: %v", err)
	}
	if v := cctx.Value(key{}); v != "v" {
		t.Errorf("Value = %v; want %q", v, "v")
	}
	if _, ok := cctx.Deadline(); !ok {
		t.Error("Cleanup context has no deadline")
	}
}
