// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session

import (
	"context"
	"fmt"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/ctxutil"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/emulator"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/resource"
)

// AcquireOptions controls AcquireDevices.
type AcquireOptions struct {
	// Count is the number of emulator instances to start. Values below 1
	// mean 1.
	Count int
	// Window shows emulator windows.
	Window bool
}

// AcquireDevices starts emulators from emu, if non-nil, and returns the
// healthy devices of host. The list may be empty.
//
// Every started emulator has its Stop pushed onto st. If an emulator fails to
// start, the ones already started are stopped before the error is returned
// and no further instances are created.
func AcquireDevices(ctx context.Context, st *resource.Stack, host device.Host, emu emulator.Provider, opts AcquireOptions) ([]device.Device, error) {
	if emu != nil {
		if err := startEmulators(ctx, st, emu, opts); err != nil {
			return nil, err
		}
	}
	devs, err := host.HealthyDevices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	logging.Infof(ctx, "Found %d device(s): %v", len(devs), device.Serials(devs))
	return devs, nil
}

func startEmulators(ctx context.Context, st *resource.Stack, emu emulator.Provider, opts AcquireOptions) (retErr error) {
	n := opts.Count
	if n < 1 {
		n = 1
	}
	if err := emu.Install(ctx); err != nil {
		return errors.Wrap(err, "failed to install emulator")
	}

	est := st.Nest("emulators")
	defer func() {
		if retErr == nil {
			return
		}
		cctx, cancel := ctxutil.ForCleanup(ctx, cleanupTimeout)
		defer cancel()
		est.Close(cctx)
	}()

	for i := 0; i < n; i++ {
		inst, err := emu.CreateInstance(ctx)
		if err != nil {
			return errors.Wrapf(err, "failed to create emulator %d of %d", i+1, n)
		}
		if err := est.Acquire(ctx, fmt.Sprintf("start %s", inst.Serial()),
			func(ctx context.Context) error {
				return inst.Start(ctx, emulator.StartOptions{
					WritableSystem: true,
					Window:         opts.Window,
					ReadOnly:       true,
				})
			},
			inst.Stop,
		); err != nil {
			return err
		}
	}
	return nil
}
