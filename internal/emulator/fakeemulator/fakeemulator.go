// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fakeemulator provides an in-memory emulator.Provider for unit tests.
package fakeemulator

import (
	"context"
	"fmt"

	"go.chromium.org/wptandroid/internal/device/fakedevice"
	"go.chromium.org/wptandroid/internal/emulator"
)

// Provider is a fake emulator.Provider. Started instances are added to Host
// as fake devices and removed again when stopped.
type Provider struct {
	// Journal records "install-emulator", "create S", "start S" and "stop S".
	Journal *fakedevice.Journal
	// Host, if set, lists the running instances.
	Host *fakedevice.Host

	// InstallErr fails Install.
	InstallErr error
	// StartErrors fails Start of the n-th created instance, counting from 1.
	StartErrors map[int]error

	// Started holds the options of every Start call.
	Started []emulator.StartOptions

	created int
}

var _ emulator.Provider = (*Provider)(nil)

// Install implements emulator.Provider.
func (p *Provider) Install(ctx context.Context) error {
	p.Journal.Add("install-emulator")
	return p.InstallErr
}

// CreateInstance implements emulator.Provider.
func (p *Provider) CreateInstance(ctx context.Context) (emulator.Instance, error) {
	p.created++
	inst := &Instance{p: p, n: p.created, serial: fmt.Sprintf("emulator-%d", 5552+2*p.created)}
	p.Journal.Add("create %s", inst.serial)
	return inst, nil
}

// Instance is a fake emulator.Instance.
type Instance struct {
	p       *Provider
	n       int
	serial  string
	running bool
}

// Serial implements emulator.Instance.
func (in *Instance) Serial() string { return in.serial }

// Start implements emulator.Instance.
func (in *Instance) Start(ctx context.Context, opts emulator.StartOptions) error {
	in.p.Journal.Add("start %s", in.serial)
	in.p.Started = append(in.p.Started, opts)
	if err := in.p.StartErrors[in.n]; err != nil {
		return err
	}
	in.running = true
	if h := in.p.Host; h != nil {
		h.Devices = append(h.Devices, fakedevice.New(in.serial, in.p.Journal))
	}
	return nil
}

// Stop implements emulator.Instance.
func (in *Instance) Stop(ctx context.Context) error {
	in.p.Journal.Add("stop %s", in.serial)
	if !in.running {
		return nil
	}
	in.running = false
	if h := in.p.Host; h != nil {
		for i, d := range h.Devices {
			if d.Serial() == in.serial {
				h.Devices = append(h.Devices[:i], h.Devices[i+1:]...)
				break
			}
		}
	}
	return nil
}
