// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package session runs one test session: it acquires devices, provisions
// them for a product and tears everything down again.
//
// Teardown is driven by a resource.Stack. Emulator starts, installs, WebView
// provider switches and device registrations all push their releases, which
// run in reverse order when the session is closed.
package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/ctxutil"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/emulator"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/product"
	"go.chromium.org/wptandroid/internal/resource"
)

// cleanupTimeout bounds teardown when Options.CleanupTimeout is unset.
const cleanupTimeout = 5 * time.Minute

// NoDevicesError is returned when no healthy device is available.
type NoDevicesError struct{}

func (*NoDevicesError) Error() string {
	return "No devices attached to this host. Make sure to provide '-avd-config' if using only emulators."
}

// DuplicateDeviceError is returned when a serial is provisioned twice.
type DuplicateDeviceError struct {
	Serial string
}

func (e *DuplicateDeviceError) Error() string {
	return fmt.Sprintf("device %s is already provisioned in this session", e.Serial)
}

// Options configures a Session.
type Options struct {
	// Product is the product under test.
	Product product.Product
	// Host enumerates devices.
	Host device.Host
	// Emulator starts emulators before enumeration. Nil means none.
	Emulator emulator.Provider
	// Acquire controls emulator start.
	Acquire AcquireOptions
	// CleanupTimeout bounds Close. Zero means five minutes.
	CleanupTimeout time.Duration
}

// Session is one provisioning scope. It is not safe for concurrent use.
type Session struct {
	opts    Options
	stack   *resource.Stack
	devices map[string]device.Device
}

// New returns a session that has acquired nothing yet.
func New(opts Options) *Session {
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = cleanupTimeout
	}
	return &Session{
		opts:    opts,
		stack:   resource.NewStack("session"),
		devices: make(map[string]device.Device),
	}
}

// Setup acquires devices and provisions each of them. It returns a
// *NoDevicesError if there is none. Whatever was acquired before a failure
// stays on the session and is released by Close.
func (s *Session) Setup(ctx context.Context) error {
	devs, err := AcquireDevices(ctx, s.stack, s.opts.Host, s.opts.Emulator, s.opts.Acquire)
	if err != nil {
		return err
	}
	if len(devs) == 0 {
		return &NoDevicesError{}
	}
	for _, d := range devs {
		if err := s.Provision(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Provision installs the product on dev and registers it under its serial.
// A serial that is already registered yields a *DuplicateDeviceError before
// anything is installed.
func (s *Session) Provision(ctx context.Context, dev device.Device) error {
	serial := dev.Serial()
	if _, ok := s.devices[serial]; ok {
		return &DuplicateDeviceError{Serial: serial}
	}

	logging.Infof(ctx, "Provisioning %s for %s", serial, s.opts.Product.Name())
	st := s.stack.Nest("device " + serial)
	if err := s.opts.Product.ProvisionDevice(ctx, st, dev); err != nil {
		return errors.Wrapf(err, "failed to provision %s", serial)
	}
	s.devices[serial] = dev
	st.Push("register "+serial, func(context.Context) error {
		delete(s.devices, serial)
		return nil
	})
	return nil
}

// Close releases everything the session acquired, in reverse order. Release
// failures are logged and returned together; every release is attempted.
// Close runs even if ctx was canceled.
func (s *Session) Close(ctx context.Context) error {
	cctx, cancel := ctxutil.ForCleanup(ctx, s.opts.CleanupTimeout)
	defer cancel()
	logging.Info(ctx, "Tearing down devices")
	return s.stack.Close(cctx)
}

// Run calls Setup, then f, then Close. Close runs on every path. The error
// of Setup or f is returned; teardown failures are only logged. If ctx has a
// deadline, Setup and f get CleanupTimeout less of it.
func (s *Session) Run(ctx context.Context, f func(ctx context.Context) error) error {
	defer func() {
		if err := s.Close(ctx); err != nil {
			logging.Warningf(ctx, "Teardown was incomplete: %v", err)
		}
	}()
	rctx, cancel := ctxutil.Shorten(ctx, s.opts.CleanupTimeout)
	defer cancel()
	if err := s.Setup(rctx); err != nil {
		return err
	}
	return f(rctx)
}

// Name returns the canonical name of the product under test.
func (s *Session) Name() string {
	return s.opts.Product.Name()
}

// Expectations returns the product's expectation files.
func (s *Session) Expectations() []string {
	return s.opts.Product.Expectations()
}

// Devices returns the serials of the provisioned devices in sorted order.
func (s *Session) Devices() []string {
	serials := make([]string, 0, len(s.devices))
	for serial := range s.devices {
		serials = append(serials, serial)
	}
	sort.Strings(serials)
	return serials
}

// Version returns the version of the product installed on the first
// provisioned device, or "" if it is unknown. Query failures are logged as
// warnings.
func (s *Session) Version(ctx context.Context) string {
	pkg := s.opts.Product.VersionProviderPackageName()
	serials := s.Devices()
	if pkg == "" || len(serials) == 0 {
		return ""
	}
	serial := serials[0]
	v, err := s.devices[serial].ApplicationVersion(ctx, pkg)
	if err != nil {
		logging.Warningf(ctx, "Failed to get version of %s on %s: %v", pkg, serial, err)
		return ""
	}
	return v
}

// WPTArgs returns the product's wptrunner arguments for the provisioned
// devices.
func (s *Session) WPTArgs(ctx context.Context) []string {
	return s.opts.Product.WPTArgs(s.Version(ctx), s.Devices())
}
