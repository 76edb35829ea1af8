// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package product

import (
	"context"

	"go.chromium.org/wptandroid/internal/device"
	"go.chromium.org/wptandroid/internal/resource"
	"go.chromium.org/wptandroid/internal/webview"
)

// chromeAndroid is Chrome for Android, installed from the APK list.
type chromeAndroid struct{ base }

func newChromeAndroid(b base) (Product, error) {
	if b.opts.PackageName == "" && len(b.opts.APKs) == 0 {
		return nil, &OptionsError{b.name, "must provide either -package-name or -apk"}
	}
	return &chromeAndroid{b}, nil
}

func (p *chromeAndroid) BrowserPackageName() string {
	if p.opts.PackageName != "" {
		return p.opts.PackageName
	}
	if len(p.opts.APKs) > 0 {
		return p.packageOf(p.opts.APKs[0])
	}
	return ""
}

func (p *chromeAndroid) VersionProviderPackageName() string {
	return p.BrowserPackageName()
}

func (p *chromeAndroid) WPTArgs(version string, serials []string) []string {
	return p.wptArgs(version, serials, p.BrowserPackageName())
}

func (p *chromeAndroid) ProvisionDevice(ctx context.Context, st *resource.Stack, dev device.Device) error {
	return p.installAPKs(ctx, st, dev)
}

// webView is Android WebView exercised through the WebView shell.
type webView struct{ base }

func newWebView(b base) (Product, error) {
	if b.opts.WebViewProvider == "" && b.opts.ReleaseChannel == "" {
		return nil, &OptionsError{b.name, "must provide either -webview-provider or -release-channel to install WebView"}
	}
	return &webView{b}, nil
}

func (p *webView) BrowserPackageName() string {
	return p.shellPackage(WebViewShellPackage)
}

// VersionProviderPackageName prefers the provider over the shell: the
// provider is what ships to users.
func (p *webView) VersionProviderPackageName() string {
	if pkg := p.packageOf(p.opts.WebViewProvider); pkg != "" {
		return pkg
	}
	return p.BrowserPackageName()
}

func (p *webView) WPTArgs(version string, serials []string) []string {
	return p.wptArgs(version, serials, p.BrowserPackageName())
}

// ProvisionDevice activates WebView first, a local provider taking priority
// over a release channel, then installs the shell and the APK list.
func (p *webView) ProvisionDevice(ctx context.Context, st *resource.Stack, dev device.Device) error {
	if p.opts.WebViewProvider != "" {
		if err := webview.UseProvider(ctx, st, dev, p.opts.WebViewProvider, p.deps.Resolve); err != nil {
			return err
		}
	} else if err := webview.InstallFromChannel(ctx, p.deps.Runner, p.opts.Python, p.opts.SrcRoot, dev.Serial(), p.opts.ReleaseChannel); err != nil {
		return err
	}
	if err := p.installShell(ctx, st, dev); err != nil {
		return err
	}
	return p.installAPKs(ctx, st, dev)
}

// webLayer is WebLayer exercised through the WebLayer shell.
type webLayer struct{ base }

func newWebLayer(b base) (Product, error) {
	return &webLayer{b}, nil
}

func (p *webLayer) BrowserPackageName() string {
	return p.shellPackage(WebLayerShellPackage)
}

// VersionProviderPackageName reads the version from the first support APK.
func (p *webLayer) VersionProviderPackageName() string {
	if len(p.opts.APKs) > 0 {
		if pkg := p.packageOf(p.opts.APKs[0]); pkg != "" {
			return pkg
		}
	}
	return p.BrowserPackageName()
}

func (p *webLayer) WPTArgs(version string, serials []string) []string {
	return append(p.wptArgs(version, serials, p.BrowserPackageName()), "--test-type=testharness")
}

func (p *webLayer) ProvisionDevice(ctx context.Context, st *resource.Stack, dev device.Device) error {
	if err := p.installShell(ctx, st, dev); err != nil {
		return err
	}
	return p.installAPKs(ctx, st, dev)
}
