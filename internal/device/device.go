// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package device talks to Android devices attached to the host, physical or
// emulated.
package device

import (
	"context"

	"go.chromium.org/wptandroid/errors"
)

// Device is a handle to one Android device.
type Device interface {
	// Serial returns the ADB serial, e.g. "emulator-5554".
	Serial() string
	// Install installs the APK at the host path apk, replacing an existing
	// installation and allowing downgrades.
	Install(ctx context.Context, apk string) error
	// Uninstall removes the package contained in the APK at the host path apk.
	Uninstall(ctx context.Context, apk string) error
	// ApplicationVersion returns the versionName of an installed package.
	// A missing package yields an error matching ErrPackageNotFound.
	ApplicationVersion(ctx context.Context, pkg string) (string, error)
	// WebViewProvider returns the package currently providing WebView.
	WebViewProvider(ctx context.Context) (string, error)
	// SetWebViewProvider makes pkg the WebView implementation.
	SetWebViewProvider(ctx context.Context, pkg string) error
}

// Host enumerates devices.
type Host interface {
	// HealthyDevices returns the devices that are online and responsive,
	// ordered by serial. The list may be empty.
	HealthyDevices(ctx context.Context) ([]Device, error)
}

// ErrPackageNotFound is returned when a queried package is not installed.
var ErrPackageNotFound = errors.New("package not found")

// Serials returns the serials of devs in order.
func Serials(devs []Device) []string {
	ss := make([]string, len(devs))
	for i, d := range devs {
		ss[i] = d.Serial()
	}
	return ss
}
