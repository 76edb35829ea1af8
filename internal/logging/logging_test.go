// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/logging/loggingtest"
)

func TestAttachLoggerPropagates(t *testing.T) {
	parent := loggingtest.NewLogger(t, logging.LevelInfo)
	child := loggingtest.NewLogger(t, logging.LevelDebug)

	ctx := logging.AttachLogger(context.Background(), parent)
	logging.Info(ctx, "starting")
	ctx = logging.AttachLogger(ctx, child)
	logging.Debugf(ctx, "pushing %s", "a.apk")
	logging.Warning(ctx, "uninstall failed")

	if diff := cmp.Diff(parent.Logs(), []string{"starting", "uninstall failed"}); diff != "" {
		t.Errorf("Parent logs mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(child.Logs(), []string{"pushing a.apk", "uninstall failed"}); diff != "" {
		t.Errorf("Child logs mismatch (-got +want):\n%s", diff)
	}
}

func TestNoLogger(t *testing.T) {
	ctx := context.Background()
	if logging.HasLogger(ctx) {
		t.Error("HasLogger(Background) = true; want false")
	}
	// Must not panic.
	logging.Infof(ctx, "dropped %d", 1)
}

func TestWithPrefix(t *testing.T) {
	logger := loggingtest.NewLogger(t, logging.LevelDebug)
	ctx := logging.AttachLogger(context.Background(), logger)
	ctx = logging.WithPrefix(ctx, "[ABC123] ")
	logging.Info(ctx, "installed")
	if diff := cmp.Diff(logger.Logs(), []string{"[ABC123] installed"}); diff != "" {
		t.Errorf("Logs mismatch (-got +want):\n%s", diff)
	}
}

func TestSinkLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSinkLogger(logging.LevelInfo, true, logging.NewWriterSink(&buf))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.Log(logging.LevelDebug, ts, "hidden")
	l.Log(logging.LevelInfo, ts, "shown")
	l.Log(logging.LevelWarning, ts, "careful")

	want := "2026-01-02T03:04:05.000000Z shown\n" +
		"2026-01-02T03:04:05.000000Z WARNING: careful\n"
	if got := buf.String(); got != want {
		t.Errorf("Output = %q; want %q", got, want)
	}
}

func TestFuncSink(t *testing.T) {
	var got []string
	l := logging.NewSinkLogger(logging.LevelDebug, false, logging.NewFuncSink(func(msg string) {
		got = append(got, msg)
	}))
	ml := logging.NewMultiLogger()
	ml.AddLogger(l)
	ml.Log(logging.LevelDebug, time.Time{}, "a")
	ml.Log(logging.LevelInfo, time.Time{}, "b")
	if diff := cmp.Diff(got, []string{"a", "b"}); diff != "" {
		t.Errorf("Messages mismatch (-got +want):\n%s", diff)
	}
}
