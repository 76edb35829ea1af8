// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fakedevice provides in-memory devices for unit tests.
package fakedevice

import (
	"context"
	"fmt"
	"sync"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/device"
)

// Journal records device calls from several fakes in one ordered list, e.g.
// "install ABC123 /tmp/wv.apk".
type Journal struct {
	mu    sync.Mutex
	calls []string
}

// Add records one call.
func (j *Journal) Add(format string, args ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls.
func (j *Journal) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

// Device is a fake device.Device. Fields may be set before use.
type Device struct {
	SerialNum string
	Journal   *Journal

	// InstallErrors fails Install of the given APK paths.
	InstallErrors map[string]error
	// UninstallErrors fails Uninstall of the given APK paths.
	UninstallErrors map[string]error
	// Versions maps package names to versionName.
	Versions map[string]string
	// VersionErr, if set, is returned by every ApplicationVersion call.
	VersionErr error
	// Provider is the current WebView provider package.
	Provider string
	// SetProviderErr fails SetWebViewProvider.
	SetProviderErr error

	mu        sync.Mutex
	installed []string
}

var _ device.Device = (*Device)(nil)

// New returns a fake device with serial recording into j.
func New(serial string, j *Journal) *Device {
	return &Device{SerialNum: serial, Journal: j, Versions: map[string]string{}}
}

// Serial implements device.Device.
func (d *Device) Serial() string { return d.SerialNum }

// Install implements device.Device.
func (d *Device) Install(ctx context.Context, apk string) error {
	d.Journal.Add("install %s %s", d.SerialNum, apk)
	if err := d.InstallErrors[apk]; err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.installed = append(d.installed, apk)
	return nil
}

// Uninstall implements device.Device.
func (d *Device) Uninstall(ctx context.Context, apk string) error {
	d.Journal.Add("uninstall %s %s", d.SerialNum, apk)
	if err := d.UninstallErrors[apk]; err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range d.installed {
		if a == apk {
			d.installed = append(d.installed[:i], d.installed[i+1:]...)
			return nil
		}
	}
	return errors.Errorf("%s is not installed on %s", apk, d.SerialNum)
}

// Installed returns the APKs currently installed, in install order.
func (d *Device) Installed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.installed...)
}

// ApplicationVersion implements device.Device.
func (d *Device) ApplicationVersion(ctx context.Context, pkg string) (string, error) {
	d.Journal.Add("version %s %s", d.SerialNum, pkg)
	if d.VersionErr != nil {
		return "", d.VersionErr
	}
	v, ok := d.Versions[pkg]
	if !ok {
		return "", errors.Wrap(device.ErrPackageNotFound, pkg)
	}
	return v, nil
}

// WebViewProvider implements device.Device.
func (d *Device) WebViewProvider(ctx context.Context) (string, error) {
	return d.Provider, nil
}

// SetWebViewProvider implements device.Device.
func (d *Device) SetWebViewProvider(ctx context.Context, pkg string) error {
	d.Journal.Add("set-provider %s %s", d.SerialNum, pkg)
	if d.SetProviderErr != nil {
		return d.SetProviderErr
	}
	d.Provider = pkg
	return nil
}

// Host is a fake device.Host.
type Host struct {
	// Devices is returned by HealthyDevices.
	Devices []*Device
	// Err, if set, is returned by HealthyDevices.
	Err error
	// Journal, if set, records each enumeration as "list".
	Journal *Journal
}

var _ device.Host = (*Host)(nil)

// HealthyDevices implements device.Host.
func (h *Host) HealthyDevices(ctx context.Context) ([]device.Device, error) {
	if h.Journal != nil {
		h.Journal.Add("list")
	}
	if h.Err != nil {
		return nil, h.Err
	}
	devs := make([]device.Device, len(h.Devices))
	for i, d := range h.Devices {
		devs[i] = d
	}
	return devs, nil
}
