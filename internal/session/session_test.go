// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/apk"
	"go.chromium.org/wptandroid/internal/device/fakedevice"
	"go.chromium.org/wptandroid/internal/emulator"
	"go.chromium.org/wptandroid/internal/emulator/fakeemulator"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/logging/loggingtest"
	"go.chromium.org/wptandroid/internal/product"
	"go.chromium.org/wptandroid/internal/resource"
	"go.chromium.org/wptandroid/internal/session"
)

func newProduct(t *testing.T, name string, opts product.Options, pkgs map[string]string) product.Product {
	t.Helper()
	reg, err := product.NewRegistry(product.Variants()...)
	if err != nil {
		t.Fatal(err)
	}
	v, err := reg.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	p, err := v.New(opts, product.Deps{Resolve: apk.Static(pkgs)})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newHost(j *fakedevice.Journal, serials ...string) *fakedevice.Host {
	h := &fakedevice.Host{Journal: j}
	for _, s := range serials {
		h.Devices = append(h.Devices, fakedevice.New(s, j))
	}
	return h
}

// callsWithPrefix returns the calls starting with prefix, with the prefix
// removed.
func callsWithPrefix(calls []string, prefix string) []string {
	var res []string
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			res = append(res, strings.TrimPrefix(c, prefix))
		}
	}
	return res
}

// reversed returns s in reverse order, or nil if s is empty.
func reversed(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	r := make([]string, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}

func TestUninstallsReverseInstalls(t *testing.T) {
	ctx := context.Background()
	for n := 0; n <= 4; n++ {
		t.Run(fmt.Sprintf("%dAPKs", n), func(t *testing.T) {
			var apks []string
			for i := 0; i < n; i++ {
				apks = append(apks, fmt.Sprintf("/out/a%d.apk", i))
			}
			j := &fakedevice.Journal{}
			s := session.New(session.Options{
				Product: newProduct(t, "clank", product.Options{APKs: apks, PackageName: "org.chromium.chrome"}, nil),
				Host:    newHost(j, "A", "B"),
			})
			if err := s.Run(ctx, func(context.Context) error { return nil }); err != nil {
				t.Fatal("Run failed: ", err)
			}

			calls := j.Calls()
			for _, serial := range []string{"A", "B"} {
				installs := callsWithPrefix(calls, "install "+serial+" ")
				uninstalls := callsWithPrefix(calls, "uninstall "+serial+" ")
				if diff := cmp.Diff(installs, apks); diff != "" {
					t.Errorf("Installs on %s mismatch (-got +want):\n%s", serial, diff)
				}
				if diff := cmp.Diff(uninstalls, reversed(installs)); diff != "" {
					t.Errorf("Uninstalls on %s mismatch (-got +want):\n%s", serial, diff)
				}
			}
		})
	}
}

func TestTeardownOrderAcrossDevices(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{APKs: []string{"/out/a.apk", "/out/b.apk"}, PackageName: "x"}, nil),
		Host:    newHost(j, "A", "B"),
	})
	if err := s.Run(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatal("Run failed: ", err)
	}
	want := []string{
		"list",
		"install A /out/a.apk",
		"install A /out/b.apk",
		"install B /out/a.apk",
		"install B /out/b.apk",
		"uninstall B /out/b.apk",
		"uninstall B /out/a.apk",
		"uninstall A /out/b.apk",
		"uninstall A /out/a.apk",
	}
	if diff := cmp.Diff(j.Calls(), want); diff != "" {
		t.Errorf("Calls mismatch (-got +want):\n%s", diff)
	}
}

func TestSetupNoDevices(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{PackageName: "x"}, nil),
		Host:    newHost(&fakedevice.Journal{}),
	})
	called := false
	err := s.Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	var nde *session.NoDevicesError
	if !errors.As(err, &nde) {
		t.Fatalf("Run returned %v; want NoDevicesError", err)
	}
	if !strings.Contains(err.Error(), "-avd-config") {
		t.Errorf("Error %q does not mention -avd-config", err)
	}
	if called {
		t.Error("Run called f without devices")
	}
}

func TestDuplicateDevice(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{APKs: []string{"/out/a.apk"}, PackageName: "x"}, nil),
		Host:    newHost(j, "A", "B"),
	})
	defer s.Close(ctx)
	if err := s.Setup(ctx); err != nil {
		t.Fatal("Setup failed: ", err)
	}
	before := len(j.Calls())

	err := s.Provision(ctx, fakedevice.New("B", j))
	var dde *session.DuplicateDeviceError
	if !errors.As(err, &dde) {
		t.Fatalf("Provision returned %v; want DuplicateDeviceError", err)
	}
	if dde.Serial != "B" {
		t.Errorf("DuplicateDeviceError.Serial = %q; want %q", dde.Serial, "B")
	}
	if extra := j.Calls()[before:]; len(extra) > 0 {
		t.Errorf("Duplicate provisioning made calls %q; want none", extra)
	}
	if diff := cmp.Diff(s.Devices(), []string{"A", "B"}); diff != "" {
		t.Errorf("Devices mismatch (-got +want):\n%s", diff)
	}
}

func TestWebViewProvider(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	s := session.New(session.Options{
		Product: newProduct(t, "webview", product.Options{WebViewProvider: "/tmp/wv.apk"},
			map[string]string{"/tmp/wv.apk": "org.chromium.webview"}),
		Host: newHost(j, "ABC123"),
	})
	if err := s.Setup(ctx); err != nil {
		t.Fatal("Setup failed: ", err)
	}
	if diff := cmp.Diff(s.Devices(), []string{"ABC123"}); diff != "" {
		t.Errorf("Devices after Setup mismatch (-got +want):\n%s", diff)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	if devs := s.Devices(); len(devs) > 0 {
		t.Errorf("Devices after Close = %q; want none", devs)
	}
	want := []string{
		"list",
		"install ABC123 /tmp/wv.apk",
		"set-provider ABC123 org.chromium.webview",
		"uninstall ABC123 /tmp/wv.apk",
	}
	if diff := cmp.Diff(j.Calls(), want); diff != "" {
		t.Errorf("Calls mismatch (-got +want):\n%s", diff)
	}
}

func TestProvisionFailureTearsDownEarlierDevices(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	host := newHost(j, "A", "B")
	host.Devices[1].InstallErrors = map[string]error{"/out/b.apk": errors.New("INSTALL_FAILED_VERSION_DOWNGRADE")}
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{APKs: []string{"/out/a.apk", "/out/b.apk"}, PackageName: "x"}, nil),
		Host:    host,
	})

	if err := s.Setup(ctx); err == nil {
		t.Fatal("Setup succeeded; want error")
	}
	if diff := cmp.Diff(s.Devices(), []string{"A"}); diff != "" {
		t.Errorf("Devices mismatch (-got +want):\n%s", diff)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	for _, d := range host.Devices {
		if got := d.Installed(); len(got) > 0 {
			t.Errorf("%s still has %q installed", d.Serial(), got)
		}
	}
	want := []string{"/out/a.apk"}
	if diff := cmp.Diff(callsWithPrefix(j.Calls(), "uninstall B "), want); diff != "" {
		t.Errorf("Uninstalls on B mismatch (-got +want):\n%s", diff)
	}
}

func TestTeardownContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	logger := loggingtest.NewLogger(t, logging.LevelWarning)
	ctx = logging.AttachLogger(ctx, logger)

	j := &fakedevice.Journal{}
	host := newHost(j, "A")
	host.Devices[0].UninstallErrors = map[string]error{"/out/b.apk": errors.New("device offline")}
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{APKs: []string{"/out/a.apk", "/out/b.apk"}, PackageName: "x"}, nil),
		Host:    host,
	})
	runErr := errors.New("wpt failed")
	if err := s.Run(ctx, func(context.Context) error { return runErr }); !errors.Is(err, runErr) {
		t.Errorf("Run returned %v; want %v", err, runErr)
	}
	want := []string{"/out/b.apk", "/out/a.apk"}
	if diff := cmp.Diff(callsWithPrefix(j.Calls(), "uninstall A "), want); diff != "" {
		t.Errorf("Uninstalls mismatch (-got +want):\n%s", diff)
	}
	if !strings.Contains(logger.String(), "device offline") {
		t.Errorf("Warnings %q do not mention the failed uninstall", logger.String())
	}
}

func TestCloseAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &fakedevice.Journal{}
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{APKs: []string{"/out/a.apk"}, PackageName: "x"}, nil),
		Host:    newHost(j, "A"),
	})
	err := s.Run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v; want %v", err, context.Canceled)
	}
	if got := callsWithPrefix(j.Calls(), "uninstall A "); len(got) != 1 {
		t.Errorf("Uninstalls after cancel = %q; want one", got)
	}
}

func TestVersion(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	host := newHost(j, "B", "A")
	host.Devices[0].Versions["org.chromium.chrome"] = "121.0.1"
	host.Devices[1].Versions["org.chromium.chrome"] = "120.0.1"
	s := session.New(session.Options{
		Product: newProduct(t, "clank", product.Options{PackageName: "org.chromium.chrome"}, nil),
		Host:    host,
	})
	defer s.Close(ctx)
	if err := s.Setup(ctx); err != nil {
		t.Fatal("Setup failed: ", err)
	}
	if got, want := s.Version(ctx), "120.0.1"; got != want {
		t.Errorf("Version() = %q; want %q", got, want)
	}
}

func TestVersionFailure(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(d *fakedevice.Device)
	}{
		{"communication", func(d *fakedevice.Device) { d.VersionErr = errors.New("device offline") }},
		{"notInstalled", func(d *fakedevice.Device) {}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			logger := loggingtest.NewLogger(t, logging.LevelWarning)
			ctx := logging.AttachLogger(context.Background(), logger)
			host := newHost(&fakedevice.Journal{}, "A")
			tc.setup(host.Devices[0])
			s := session.New(session.Options{
				Product: newProduct(t, "clank", product.Options{PackageName: "org.chromium.chrome"}, nil),
				Host:    host,
			})
			defer s.Close(ctx)
			if err := s.Setup(ctx); err != nil {
				t.Fatal("Setup failed: ", err)
			}
			if got := s.Version(ctx); got != "" {
				t.Errorf("Version() = %q; want unknown", got)
			}
			if !strings.Contains(logger.String(), "Failed to get version") {
				t.Errorf("No warning logged; got %q", logger.String())
			}
		})
	}
}

func TestWPTArgs(t *testing.T) {
	ctx := context.Background()
	host := newHost(&fakedevice.Journal{}, "B", "A")
	host.Devices[1].Versions["org.chromium.weblayer.support"] = "120.0.1"
	s := session.New(session.Options{
		Product: newProduct(t, "weblayer", product.Options{APKs: []string{"/out/WebLayerSupport.apk"}, ADBBinary: "/adb"},
			map[string]string{"/out/WebLayerSupport.apk": "org.chromium.weblayer.support"}),
		Host: host,
	})
	defer s.Close(ctx)
	if err := s.Setup(ctx); err != nil {
		t.Fatal("Setup failed: ", err)
	}
	want := []string{
		"--browser-version=120.0.1",
		"--device-serial=A",
		"--device-serial=B",
		"--package-name=org.chromium.weblayer.shell",
		"--adb-binary=/adb",
		"--test-type=testharness",
	}
	if diff := cmp.Diff(s.WPTArgs(ctx), want); diff != "" {
		t.Errorf("WPTArgs mismatch (-got +want):\n%s", diff)
	}
}

func TestAcquireDevicesStartFailure(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	host := newHost(j)
	emu := &fakeemulator.Provider{
		Journal:     j,
		Host:        host,
		StartErrors: map[int]error{2: errors.New("boot timed out")},
	}
	st := resource.NewStack("test")
	if _, err := session.AcquireDevices(ctx, st, host, emu, session.AcquireOptions{Count: 3}); err == nil {
		t.Fatal("AcquireDevices succeeded; want error")
	}
	// Started emulators are stopped before the error reaches the caller.
	want := []string{
		"install-emulator",
		"create emulator-5554",
		"start emulator-5554",
		"create emulator-5556",
		"start emulator-5556",
		"stop emulator-5554",
	}
	if diff := cmp.Diff(j.Calls(), want); diff != "" {
		t.Errorf("Calls after AcquireDevices mismatch (-got +want):\n%s", diff)
	}
	if len(host.Devices) != 0 {
		t.Errorf("%d emulator(s) still running after AcquireDevices failed", len(host.Devices))
	}

	if err := st.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	if diff := cmp.Diff(j.Calls(), want); diff != "" {
		t.Errorf("Close stopped emulators again (-got +want):\n%s", diff)
	}
}

func TestAcquireDevicesWithEmulators(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	host := newHost(j, "PHYS1")
	emu := &fakeemulator.Provider{Journal: j, Host: host}
	st := resource.NewStack("test")

	devs, err := session.AcquireDevices(ctx, st, host, emu, session.AcquireOptions{Count: 2, Window: true})
	if err != nil {
		t.Fatal("AcquireDevices failed: ", err)
	}
	var serials []string
	for _, d := range devs {
		serials = append(serials, d.Serial())
	}
	if diff := cmp.Diff(serials, []string{"PHYS1", "emulator-5554", "emulator-5556"}); diff != "" {
		t.Errorf("Devices mismatch (-got +want):\n%s", diff)
	}
	wantOpts := emulator.StartOptions{WritableSystem: true, Window: true, ReadOnly: true}
	for i, o := range emu.Started {
		if o != wantOpts {
			t.Errorf("Start #%d options = %+v; want %+v", i+1, o, wantOpts)
		}
	}

	if err := st.Close(ctx); err != nil {
		t.Fatal("Close failed: ", err)
	}
	want := []string{"stop emulator-5556", "stop emulator-5554"}
	if diff := cmp.Diff(callsWithPrefix(j.Calls(), "stop "), []string{"emulator-5556", "emulator-5554"}); diff != "" {
		t.Errorf("Stops mismatch (-got +want):\n%s", diff)
	}
	if calls := j.Calls(); !cmp.Equal(calls[len(calls)-2:], want) {
		t.Errorf("Calls end with %q; want %q", calls[len(calls)-2:], want)
	}
}

func TestAcquireDevicesCount(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		count int
		want  int
	}{{0, 1}, {1, 1}, {3, 3}} {
		j := &fakedevice.Journal{}
		emu := &fakeemulator.Provider{Journal: j}
		st := resource.NewStack("test")
		if _, err := session.AcquireDevices(ctx, st, newHost(j), emu, session.AcquireOptions{Count: tc.count}); err != nil {
			t.Fatal("AcquireDevices failed: ", err)
		}
		if got := len(emu.Started); got != tc.want {
			t.Errorf("Count %d started %d instances; want %d", tc.count, got, tc.want)
		}
		st.Close(ctx)
	}
}

func TestAcquireDevicesInstallFailure(t *testing.T) {
	ctx := context.Background()
	j := &fakedevice.Journal{}
	emu := &fakeemulator.Provider{Journal: j, InstallErr: errors.New("sdkmanager failed")}
	st := resource.NewStack("test")
	if _, err := session.AcquireDevices(ctx, st, newHost(j), emu, session.AcquireOptions{Count: 2}); err == nil {
		t.Fatal("AcquireDevices succeeded; want error")
	}
	if diff := cmp.Diff(j.Calls(), []string{"install-emulator"}); diff != "" {
		t.Errorf("Calls mismatch (-got +want):\n%s", diff)
	}
}

func TestRunReservesCleanupTime(t *testing.T) {
	dl := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), dl)
	defer cancel()

	s := session.New(session.Options{
		Product:        newProduct(t, "clank", product.Options{PackageName: "org.chromium.chrome"}, nil),
		Host:           newHost(&fakedevice.Journal{}, "A"),
		CleanupTimeout: 10 * time.Minute,
	})
	var got time.Time
	if err := s.Run(ctx, func(ctx context.Context) error {
		got, _ = ctx.Deadline()
		return nil
	}); err != nil {
		t.Fatal("Run failed: ", err)
	}
	if want := dl.Add(-10 * time.Minute); !got.Equal(want) {
		t.Errorf("Deadline seen by f = %v; want %v", got, want)
	}
}
