// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package resource_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/logging/loggingtest"
	"go.chromium.org/wptandroid/internal/resource"
)

// recorder appends to a shared log for ordering checks.
type recorder struct{ log []string }

func (r *recorder) release(name string, err error) resource.ReleaseFunc {
	return func(context.Context) error {
		r.log = append(r.log, name)
		return err
	}
}

func TestCloseReleasesInReverse(t *testing.T) {
	ctx := context.Background()
	var r recorder
	st := resource.NewStack("test")
	st.Push("a", r.release("a", nil))
	st.Push("b", r.release("b", nil))
	st.Push("c", r.release("c", nil))

	if err := st.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	if diff := cmp.Diff(r.log, []string{"c", "b", "a"}); diff != "" {
		t.Errorf("Release order mismatch (-got +want):\n%s", diff)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d after Close; want 0", st.Len())
	}
}

func TestCloseRunsEachReleaseOnce(t *testing.T) {
	ctx := context.Background()
	var r recorder
	st := resource.NewStack("test")
	st.Push("a", r.release("a", errors.New("stuck")))

	if err := st.Close(ctx); err == nil {
		t.Error("First Close succeeded; want error")
	}
	if err := st.Close(ctx); err != nil {
		t.Error("Second Close failed: ", err)
	}
	if diff := cmp.Diff(r.log, []string{"a"}); diff != "" {
		t.Errorf("Releases mismatch (-got +want):\n%s", diff)
	}
}

func TestCloseContinuesAfterFailure(t *testing.T) {
	logger := loggingtest.NewLogger(t, logging.LevelWarning)
	ctx := logging.AttachLogger(context.Background(), logger)

	var r recorder
	st := resource.NewStack("test")
	st.Push("uninstall a.apk", r.release("a", nil))
	st.Push("uninstall b.apk", r.release("b", errors.New("device offline")))
	st.Push("uninstall c.apk", r.release("c", errors.New("timeout")))

	err := st.Close(ctx)
	if err == nil {
		t.Fatal("Close succeeded; want error")
	}
	for _, s := range []string{"device offline", "timeout"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("Close error %q does not mention %q", err, s)
		}
	}
	if diff := cmp.Diff(r.log, []string{"c", "b", "a"}); diff != "" {
		t.Errorf("Release order mismatch (-got +want):\n%s", diff)
	}
	if n := len(logger.Logs()); n != 2 {
		t.Errorf("Got %d warnings; want 2:\n%s", n, logger.String())
	}
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()
	var r recorder
	st := resource.NewStack("test")

	for i, step := range []struct {
		desc    string
		err     error
		wantLen int
	}{
		{"install a.apk", nil, 1},
		{"install b.apk", errors.New("INSTALL_FAILED_OLDER_SDK"), 1},
		{"install c.apk", nil, 2},
	} {
		err := st.Acquire(ctx, step.desc, func(context.Context) error {
			r.log = append(r.log, "+"+step.desc)
			return step.err
		}, r.release("-"+step.desc, nil))
		if (err != nil) != (step.err != nil) {
			t.Fatalf("Step %d: Acquire returned %v; want error %v", i, err, step.err)
		}
		if st.Len() != step.wantLen {
			t.Fatalf("Step %d: Len() = %d; want %d", i, st.Len(), step.wantLen)
		}
	}
	if err := st.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	want := []string{"+install a.apk", "+install b.apk", "+install c.apk", "-install c.apk", "-install a.apk"}
	if diff := cmp.Diff(r.log, want); diff != "" {
		t.Errorf("Call order mismatch (-got +want):\n%s", diff)
	}
}

func TestNestKeepsGlobalOrder(t *testing.T) {
	ctx := context.Background()
	var r recorder
	root := resource.NewStack("session")
	root.Push("emulator-5554", r.release("stop emulator-5554", nil))

	dev := root.Nest("device emulator-5554")
	dev.Push("provider", r.release("restore provider", nil))
	dev.Push("shell", r.release("uninstall shell", nil))

	root.Push("registration", r.release("deregister", nil))

	if err := root.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	want := []string{"deregister", "uninstall shell", "restore provider", "stop emulator-5554"}
	if diff := cmp.Diff(r.log, want); diff != "" {
		t.Errorf("Release order mismatch (-got +want):\n%s", diff)
	}
}

func TestPushAfterClosePanics(t *testing.T) {
	st := resource.NewStack("test")
	st.Close(context.Background())
	defer func() {
		if recover() == nil {
			t.Error("Push after Close did not panic")
		}
	}()
	st.Push("late", func(context.Context) error { return nil })
}
