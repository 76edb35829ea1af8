// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package product

import (
	"context"
	"fmt"
	"path/filepath"

	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/resource"
)

// base holds what every product shares.
type base struct {
	name string
	opts Options
	deps Deps
}

func (b base) Name() string { return b.name }

// packageOf returns the package of the APK at path, or "" if it cannot be
// read.
func (b base) packageOf(path string) string {
	if path == "" {
		return ""
	}
	pkg, err := b.deps.Resolve(path)
	if err != nil {
		return ""
	}
	return pkg
}

// wptArgs returns the arguments common to all Android products.
func (b base) wptArgs(version string, serials []string, pkg string) []string {
	var args []string
	if version != "" {
		args = append(args, "--browser-version="+version)
	}
	for _, s := range serials {
		args = append(args, "--device-serial="+s)
	}
	if pkg != "" {
		args = append(args, "--package-name="+pkg)
	}
	if b.opts.ADBBinary != "" {
		args = append(args, "--adb-binary="+b.opts.ADBBinary)
	}
	return args
}

func (b base) Expectations() []string {
	rel, ok := expectationFiles[b.name]
	if !ok {
		return nil
	}
	return []string{filepath.Join(b.opts.SrcRoot, filepath.FromSlash(webTestsDir), filepath.FromSlash(rel))}
}

// install installs the APK at path on dev and pushes its uninstall.
func install(ctx context.Context, st *resource.Stack, dev device.Device, path string) error {
	return st.Acquire(ctx, fmt.Sprintf("install %s on %s", path, dev.Serial()),
		func(ctx context.Context) error { return dev.Install(ctx, path) },
		func(ctx context.Context) error { return dev.Uninstall(ctx, path) })
}

// installAPKs installs the configured APK list in order.
func (b base) installAPKs(ctx context.Context, st *resource.Stack, dev device.Device) error {
	for _, p := range b.opts.APKs {
		if err := install(ctx, st, dev, p); err != nil {
			return err
		}
	}
	return nil
}

// installShell installs the shell APK, if one was given.
func (b base) installShell(ctx context.Context, st *resource.Stack, dev device.Device) error {
	if b.opts.ShellAPK == "" {
		return nil
	}
	return install(ctx, st, dev, b.opts.ShellAPK)
}

// shellPackage returns the browser package of a shell-based product.
func (b base) shellPackage(def string) string {
	if b.opts.PackageName != "" {
		return b.opts.PackageName
	}
	if pkg := b.packageOf(b.opts.ShellAPK); pkg != "" {
		return pkg
	}
	return def
}
