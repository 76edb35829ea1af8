// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package product describes the Android browser products whose web platform
// tests can be run: Chrome, WebView and WebLayer.
//
// Each product kind is a Variant. A Registry maps every accepted name and
// alias to its Variant, and a Variant builds a Product bound to one run's
// options.
package product

import (
	"context"
	"fmt"
	"path/filepath"

	"go.chromium.org/wptandroid/internal/apk"
	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/resource"
)

// Options holds the product-related settings of a run. It is read, never
// modified, by products.
type Options struct {
	// APKs are installed on every device in order.
	APKs []string
	// ShellAPK is the WebView or WebLayer shell to install.
	ShellAPK string
	// WebViewProvider is a WebView provider APK to install.
	WebViewProvider string
	// ReleaseChannel names a WebView release channel to install from.
	ReleaseChannel string
	// PackageName overrides the package tests run against.
	PackageName string
	// ADBBinary is passed to wptrunner when set.
	ADBBinary string
	// SrcRoot is the Chromium checkout containing expectations and scripts.
	SrcRoot string
	// Python runs helper scripts in the checkout.
	Python string
}

// Deps are the collaborators a Product uses.
type Deps struct {
	// Resolve reads package names from APKs.
	Resolve apk.Resolver
	// Runner runs host scripts such as the WebView channel installer.
	Runner hostexec.Runner
}

// Product is a browser product bound to the options of one run.
type Product interface {
	// Name returns the canonical wptrunner product name.
	Name() string
	// BrowserPackageName returns the package tests run against, or "" to let
	// wptrunner guess. An explicit package name always wins.
	BrowserPackageName() string
	// VersionProviderPackageName returns the package whose versionName is the
	// product version, or "" if unknown.
	VersionProviderPackageName() string
	// WPTArgs returns the product's wptrunner arguments. version may be "" if
	// unknown; serials are the provisioned devices.
	WPTArgs(version string, serials []string) []string
	// Expectations returns product-specific expectation files.
	Expectations() []string
	// ProvisionDevice performs the product's installs on dev. Every
	// successful install pushes its uninstall onto st.
	ProvisionDevice(ctx context.Context, st *resource.Stack, dev device.Device) error
}

// Variant is one kind of product.
type Variant interface {
	// Name returns the canonical name.
	Name() string
	// Aliases returns alternative names accepted on the command line.
	Aliases() []string
	// New validates opts and returns a Product. Invalid option combinations
	// yield an *OptionsError.
	New(opts Options, deps Deps) (Product, error)
}

// Canonical product names, as accepted by wptrunner.
const (
	ChromeAndroidName = "chrome_android"
	WebViewName       = "android_webview"
	WebLayerName      = "android_weblayer"
)

// Default packages of the shells.
const (
	WebViewShellPackage  = "org.chromium.webview_shell"
	WebLayerShellPackage = "org.chromium.weblayer.shell"
)

// webTestsDir holds expectation files, relative to the source root.
const webTestsDir = "third_party/blink/web_tests"

// expectationFiles maps product names to their override expectations.
var expectationFiles = map[string]string{
	ChromeAndroidName: "android/ClankWPTOverrideExpectations",
	WebViewName:       "android/WebviewWPTOverrideExpectations",
	WebLayerName:      "android/WeblayerWPTOverrideExpectations",
}

// DisabledTestsFile returns the expectations disabling tests on every Android
// product.
func DisabledTestsFile(srcRoot string) string {
	return filepath.Join(srcRoot, filepath.FromSlash(webTestsDir), "android", "AndroidWPTNeverFixTests")
}

// OptionsError reports options that are invalid for a product.
type OptionsError struct {
	Product string
	Msg     string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Product, e.Msg)
}

// Variants returns the built-in variants.
func Variants() []Variant {
	return []Variant{
		variant{ChromeAndroidName, []string{"clank"}, newChromeAndroid},
		variant{WebViewName, []string{"webview"}, newWebView},
		variant{WebLayerName, []string{"weblayer"}, newWebLayer},
	}
}

// variant implements Variant with a constructor function per product.
type variant struct {
	name    string
	aliases []string
	build   func(b base) (Product, error)
}

func (v variant) Name() string      { return v.name }
func (v variant) Aliases() []string { return append([]string(nil), v.aliases...) }

func (v variant) New(opts Options, deps Deps) (Product, error) {
	if deps.Resolve == nil {
		deps.Resolve = apk.Cached(apk.PackageName)
	}
	if deps.Runner == nil {
		deps.Runner = &hostexec.Exec{}
	}
	if opts.Python == "" {
		opts.Python = "python3"
	}
	return v.build(base{name: v.name, opts: opts, deps: deps})
}
