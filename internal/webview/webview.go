// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package webview switches the WebView implementation of a device.
package webview

import (
	"context"
	"fmt"
	"path/filepath"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/apk"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/resource"
)

// UseProvider installs the provider APK at apkPath on dev and makes it the
// WebView implementation. Releases pushed to st restore the previous
// provider and then uninstall the APK.
func UseProvider(ctx context.Context, st *resource.Stack, dev device.Device, apkPath string, resolve apk.Resolver) error {
	pkg, err := resolve(apkPath)
	if err != nil {
		return errors.Wrap(err, "failed to read WebView provider package")
	}
	prev, err := dev.WebViewProvider(ctx)
	if err != nil {
		logging.Warningf(ctx, "Failed to read current WebView provider of %s; it will not be restored: %v", dev.Serial(), err)
		prev = ""
	}

	serial := dev.Serial()
	if err := st.Acquire(ctx, fmt.Sprintf("install %s on %s", apkPath, serial),
		func(ctx context.Context) error { return dev.Install(ctx, apkPath) },
		func(ctx context.Context) error { return dev.Uninstall(ctx, apkPath) },
	); err != nil {
		return err
	}
	if pkg == prev {
		return nil
	}

	restore := func(ctx context.Context) error {
		if prev == "" {
			return nil
		}
		return dev.SetWebViewProvider(ctx, prev)
	}
	if err := st.Acquire(ctx, fmt.Sprintf("set WebView provider %s on %s", pkg, serial),
		func(ctx context.Context) error { return dev.SetWebViewProvider(ctx, pkg) },
		restore,
	); err != nil {
		return err
	}
	logging.Infof(ctx, "WebView provider of %s is %s", serial, pkg)
	return nil
}

// InstallFromChannel installs the WebView of a release channel ("stable",
// "beta", "dev" or "canary") on the device with serial, using the installer
// script in the source tree. Nothing is released afterwards.
func InstallFromChannel(ctx context.Context, r hostexec.Runner, python, srcRoot, serial, channel string) error {
	script := filepath.Join(srcRoot, "clank", "bin", "install_webview.py")
	if err := r.Run(ctx, []string{python, script, "-s", serial, "--channel", channel}); err != nil {
		return errors.Wrapf(err, "failed to install WebView from release (serial: %s, channel: %s)", serial, channel)
	}
	return nil
}
