// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"

	"go.chromium.org/wptandroid/internal/apk"
	"go.chromium.org/wptandroid/internal/config"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/emulator"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/product"
	"go.chromium.org/wptandroid/internal/session"
)

// env provides the collaborators subcommands work with. Unit tests replace
// it with fakes.
type env interface {
	// runner runs host commands, logging their output.
	runner() hostexec.Runner
	// wptRunner runs the metadata builder and wptrunner, whose output goes
	// to the console unfiltered.
	wptRunner() hostexec.Runner
	// resolver reads APK package names.
	resolver() apk.Resolver
	// host connects to the devices of this machine.
	host(ctx context.Context, c *config.Config) (device.Host, error)
	// emulators loads the AVD configuration, or returns nil if none is set.
	emulators(c *config.Config) (emulator.Provider, error)
}

type realEnv struct {
	exec    *hostexec.Exec
	resolve apk.Resolver
}

var _ env = (*realEnv)(nil)

func newRealEnv() *realEnv {
	return &realEnv{exec: &hostexec.Exec{}, resolve: apk.Cached(apk.PackageName)}
}

func (e *realEnv) runner() hostexec.Runner { return e.exec }

func (e *realEnv) wptRunner() hostexec.Runner { return &hostexec.Exec{Stdout: os.Stdout} }

func (e *realEnv) resolver() apk.Resolver { return e.resolve }

func adbPath(c *config.Config) string {
	if p := c.ADBBinary(); p != "" {
		return p
	}
	return "adb"
}

func (e *realEnv) host(ctx context.Context, c *config.Config) (device.Host, error) {
	if err := device.StartServer(ctx, e.exec, adbPath(c)); err != nil {
		return nil, err
	}
	h, err := device.NewADBHost(ctx, e.resolve)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (e *realEnv) emulators(c *config.Config) (emulator.Provider, error) {
	if c.AVDConfig() == "" {
		return nil, nil
	}
	cfg, err := emulator.Load(c.AVDConfig(), emulator.Options{
		SrcRoot: c.SrcRoot(),
		ADBPath: adbPath(c),
		Runner:  e.exec,
		LogDir:  c.BuildOutDir(),
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProduct builds the configured product. Invalid options yield a
// *product.OptionsError.
func newProduct(reg *product.Registry, e env, c *config.Config) (product.Product, error) {
	v, err := reg.Lookup(c.Product())
	if err != nil {
		return nil, err
	}
	return v.New(c.ProductOptions(), product.Deps{Resolve: e.resolver(), Runner: e.runner()})
}

// newSession connects to the host and returns a session for p. Nothing is
// acquired yet.
func newSession(ctx context.Context, e env, c *config.Config, p product.Product) (*session.Session, error) {
	h, err := e.host(ctx, c)
	if err != nil {
		return nil, err
	}
	emu, err := e.emulators(c)
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Product:  p,
		Host:     h,
		Emulator: emu,
		Acquire:  session.AcquireOptions{Count: c.Processes(), Window: c.EmulatorWindow()},
	}), nil
}

// finishConfig applies the defaults file and derives defaults. Errors are
// usage errors.
func finishConfig(f *flag.FlagSet, cfg *config.MutableConfig) (*config.Config, error) {
	if cfg.DefaultsFile != "" {
		if err := config.LoadDefaultsFile(f, cfg.DefaultsFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.DeriveDefaults(); err != nil {
		return nil, err
	}
	return cfg.Freeze(), nil
}
