// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package device

import (
	"bufio"
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/electricbubble/gadb"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/apk"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/logging"
)

// stagingDir is where APKs are pushed before pm installs them.
const stagingDir = "/data/local/tmp"

// successRE matches the only positive result of pm install and pm uninstall.
var successRE = regexp.MustCompile(`(?m)^Success`)

// ADBHost enumerates devices through the local ADB server.
type ADBHost struct {
	client  gadb.Client
	resolve apk.Resolver
}

var _ Host = (*ADBHost)(nil)

// StartServer makes sure an ADB server is listening, using the adb binary at
// adbPath. gadb only speaks the server protocol and cannot start one itself.
func StartServer(ctx context.Context, r hostexec.Runner, adbPath string) error {
	if _, err := r.Output(ctx, []string{adbPath, "start-server"}); err != nil {
		return errors.Wrap(err, "failed to start ADB server")
	}
	return nil
}

// NewADBHost connects to the ADB server on the default port. resolve maps APK
// paths to package names for uninstalls.
func NewADBHost(ctx context.Context, resolve apk.Resolver) (*ADBHost, error) {
	var client gadb.Client
	if err := doAsync(ctx, func() error {
		var err error
		client, err = gadb.NewClient()
		return err
	}, nil); err != nil {
		return nil, errors.Wrap(err, "failed to connect to ADB server")
	}
	return &ADBHost{client: client, resolve: resolve}, nil
}

// HealthyDevices implements Host. Devices that do not answer a trivial shell
// command are skipped.
func (h *ADBHost) HealthyDevices(ctx context.Context) ([]Device, error) {
	var list []gadb.Device
	if err := doAsync(ctx, func() error {
		var err error
		list, err = h.client.DeviceList()
		return err
	}, nil); err != nil {
		return nil, errors.Wrap(err, "failed to list ADB devices")
	}

	var devs []Device
	for _, d := range list {
		dev := &ADBDevice{dev: d, resolve: h.resolve}
		if err := dev.ping(ctx); err != nil {
			logging.Infof(ctx, "Skipping unhealthy device %s: %v", dev.Serial(), err)
			continue
		}
		devs = append(devs, dev)
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].Serial() < devs[j].Serial() })
	return devs, nil
}

// ADBDevice is a Device reached through the ADB server.
type ADBDevice struct {
	dev     gadb.Device
	resolve apk.Resolver
}

var _ Device = (*ADBDevice)(nil)

// Serial implements Device.
func (d *ADBDevice) Serial() string {
	return d.dev.Serial()
}

// shell runs a shell command on the device and returns its output.
func (d *ADBDevice) shell(ctx context.Context, args ...string) (string, error) {
	cmd := hostexec.CommandLine(args...)
	logging.Debugf(ctx, "[%s] shell %s", d.Serial(), cmd)
	var out string
	err := doAsync(ctx, func() error {
		var err error
		out, err = d.dev.RunShellCommand(cmd)
		return err
	}, nil)
	if err != nil {
		return "", errors.Wrapf(err, "%s: %s", d.Serial(), cmd)
	}
	return out, nil
}

func (d *ADBDevice) ping(ctx context.Context) error {
	out, err := d.shell(ctx, "echo", "ok")
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) != "ok" {
		return errors.Errorf("unexpected echo output %q", out)
	}
	return nil
}

// Install implements Device.
func (d *ADBDevice) Install(ctx context.Context, apkPath string) error {
	remote := path.Join(stagingDir, filepath.Base(apkPath))
	if err := d.push(ctx, apkPath, remote); err != nil {
		return err
	}
	defer func() {
		if _, err := d.shell(ctx, "rm", "-f", remote); err != nil {
			logging.Debugf(ctx, "Failed to remove %s: %v", remote, err)
		}
	}()

	if _, err := d.shell(ctx, "settings", "put", "global", "verifier_verify_adb_installs", "0"); err != nil {
		return errors.Wrap(err, "failed disabling verifier_verify_adb_installs")
	}
	out, err := d.shell(ctx, "pm", "install", "-r", "-d", remote)
	if err != nil {
		return err
	}
	if !successRE.MatchString(out) {
		return errors.Errorf("failed to install %s on %s: %q", apkPath, d.Serial(), strings.TrimSpace(out))
	}
	return nil
}

func (d *ADBDevice) push(ctx context.Context, local, remote string) error {
	f, err := os.Open(local)
	if err != nil {
		return errors.Wrap(err, "failed to open APK")
	}
	defer f.Close()
	logging.Debugf(ctx, "[%s] push %s %s", d.Serial(), local, remote)
	if err := doAsync(ctx, func() error { return d.dev.PushFile(f, remote) }, nil); err != nil {
		return errors.Wrapf(err, "failed to push %s to %s", local, d.Serial())
	}
	return nil
}

// Uninstall implements Device.
func (d *ADBDevice) Uninstall(ctx context.Context, apkPath string) error {
	pkg, err := d.resolve(apkPath)
	if err != nil {
		return err
	}
	out, err := d.shell(ctx, "pm", "uninstall", pkg)
	if err != nil {
		return err
	}
	if !successRE.MatchString(out) {
		return errors.Errorf("failed to uninstall %s from %s: %q", pkg, d.Serial(), strings.TrimSpace(out))
	}
	return nil
}

// ApplicationVersion implements Device.
func (d *ADBDevice) ApplicationVersion(ctx context.Context, pkg string) (string, error) {
	out, err := d.shell(ctx, "dumpsys", "package", pkg)
	if err != nil {
		return "", err
	}
	return parseVersionName(out, pkg)
}

// parseVersionName extracts versionName from the "Package [pkg]" section of
// dumpsys package output.
func parseVersionName(out, pkg string) (string, error) {
	header := "Package [" + pkg + "]"
	in := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Package ["):
			in = strings.HasPrefix(line, header)
		case in && strings.HasPrefix(line, "versionName="):
			return strings.TrimPrefix(line, "versionName="), nil
		}
	}
	return "", errors.Wrapf(ErrPackageNotFound, "%s", pkg)
}

var currentProviderRE = regexp.MustCompile(`Current WebView package \(name, version\): \(([^,\s]+),`)

// WebViewProvider implements Device.
func (d *ADBDevice) WebViewProvider(ctx context.Context) (string, error) {
	out, err := d.shell(ctx, "dumpsys", "webviewupdate")
	if err != nil {
		return "", err
	}
	return parseWebViewProvider(out)
}

func parseWebViewProvider(out string) (string, error) {
	m := currentProviderRE.FindStringSubmatch(out)
	if m == nil {
		return "", errors.New("no current WebView package in dumpsys webviewupdate output")
	}
	return m[1], nil
}

// SetWebViewProvider implements Device.
func (d *ADBDevice) SetWebViewProvider(ctx context.Context, pkg string) error {
	out, err := d.shell(ctx, "cmd", "webviewupdate", "set-webview-implementation", pkg)
	if err != nil {
		return err
	}
	if !successRE.MatchString(out) {
		return errors.Errorf("failed to set WebView provider %s on %s: %q", pkg, d.Serial(), strings.TrimSpace(out))
	}
	return nil
}
