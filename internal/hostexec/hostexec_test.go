// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package hostexec

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/logging/loggingtest"
)

func TestCommandLine(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"adb", "-s", "emulator-5554", "emu", "kill"}, "adb -s emulator-5554 emu kill"},
		{[]string{"echo", "a b"}, "echo 'a b'"},
		{[]string{"echo", "it's"}, `echo 'it'"'"'s'`},
		{[]string{"--binary-arg=--enable-features=A,B"}, "--binary-arg=--enable-features=A,B"},
		{[]string{"=x"}, "'=x'"},
		{[]string{""}, "''"},
	} {
		if got := CommandLine(tc.args...); got != tc.want {
			t.Errorf("CommandLine(%q) = %q; want %q", tc.args, got, tc.want)
		}
	}
}

func TestRunStreamsOutput(t *testing.T) {
	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)

	var e Exec
	if err := e.Run(ctx, []string{"sh", "-c", "echo one; echo two"}); err != nil {
		t.Fatal("Run failed: ", err)
	}
	if diff := cmp.Diff(logger.Logs(), []string{"one", "two"}); diff != "" {
		t.Errorf("Logged output mismatch (-got +want):\n%s", diff)
	}
}

func TestRunExitCode(t *testing.T) {
	var e Exec
	err := e.Run(context.Background(), []string{"sh", "-c", "exit 3"})
	if err == nil {
		t.Fatal("Run succeeded; want error")
	}
	if code, ok := ExitCode(err); !ok || code != 3 {
		t.Errorf("ExitCode(%v) = (%d, %v); want (3, true)", err, code, ok)
	}
}

func TestOutput(t *testing.T) {
	var e Exec
	out, err := e.Output(context.Background(), []string{"sh", "-c", "printf 5.0"})
	if err != nil {
		t.Fatal("Output failed: ", err)
	}
	if string(out) != "5.0" {
		t.Errorf("Output = %q; want %q", out, "5.0")
	}
	if _, err := e.Output(context.Background(), nil); err == nil {
		t.Error("Output(nil) succeeded; want error")
	}
}

func TestRunStdout(t *testing.T) {
	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)

	var buf bytes.Buffer
	e := Exec{Stdout: &buf}
	if err := e.Run(ctx, []string{"sh", "-c", "echo out; echo err >&2"}); err != nil {
		t.Fatal("Run failed: ", err)
	}
	if got, want := buf.String(), "out\nerr\n"; got != want {
		t.Errorf("Output = %q; want %q", got, want)
	}
	if logs := logger.Logs(); len(logs) > 0 {
		t.Errorf("Run logged %q; want nothing", logs)
	}
}
