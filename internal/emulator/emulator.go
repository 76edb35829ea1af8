// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package emulator installs, starts and stops Android emulator instances
// described by AVD configuration files.
package emulator

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/hostexec"
	"go.chromium.org/wptandroid/internal/logging"
)

// Emulator console ports are even numbers in this range; ADB probes each
// port+1 for emulators.
const (
	firstPort = 5554
	lastPort  = 5584
)

// Provider creates emulator instances from one AVD configuration.
type Provider interface {
	// Install makes sure the emulator and system image are present.
	Install(ctx context.Context) error
	// CreateInstance allocates a new, not yet started instance.
	CreateInstance(ctx context.Context) (Instance, error)
}

// Instance is one emulator process.
type Instance interface {
	// Serial returns the ADB serial the instance will have, e.g.
	// "emulator-5554".
	Serial() string
	// Start launches the instance and waits until Android has booted. On
	// failure nothing is left running.
	Start(ctx context.Context, opts StartOptions) error
	// Stop shuts the instance down. It is safe to call more than once.
	Stop(ctx context.Context) error
}

// StartOptions controls how an instance is launched.
type StartOptions struct {
	// WritableSystem mounts /system read-write, needed to replace the
	// WebView provider.
	WritableSystem bool
	// Window shows the emulator UI instead of running headless.
	Window bool
	// ReadOnly keeps the AVD image unmodified so instances can share it.
	ReadOnly bool
}

// Options configures a Config.
type Options struct {
	// SrcRoot is the Chromium source root.
	SrcRoot string
	// CIPDRoot is the directory the dest_path of each package is relative
	// to. Empty means <SrcRoot>/.android_emulator.
	CIPDRoot string
	// ADBPath is the adb binary used to query boot state and kill instances.
	ADBPath string
	// Runner runs sdkmanager and adb. Nil means real processes.
	Runner hostexec.Runner
	// Clock drives boot polling and stop timeouts. Nil means the real clock.
	Clock clock.Clock
	// BootTimeout bounds Start. Zero means five minutes.
	BootTimeout time.Duration
	// PollInterval is the pause between boot checks. Zero means one second.
	PollInterval time.Duration
	// StopGrace is how long Stop waits after each shutdown attempt. Zero
	// means ten seconds.
	StopGrace time.Duration
	// LogDir, if set, receives one emulator-<port>.log per instance.
	LogDir string
}

// cipdRootDir is where Chromium's AVD tooling installs emulator packages,
// relative to the source root.
const cipdRootDir = ".android_emulator"

// Config is a loaded AVD configuration. It implements Provider.
type Config struct {
	spec  *Spec
	opts  Options
	ports map[int]bool // console ports handed out and not yet released
}

var _ Provider = (*Config)(nil)

// Load reads the AVD configuration at path.
func Load(path string, opts Options) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read AVD config")
	}
	spec, err := ParseSpec(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return New(spec, opts), nil
}

// New returns a Config for spec, filling unset options with defaults.
func New(spec *Spec, opts Options) *Config {
	if opts.Runner == nil {
		opts.Runner = &hostexec.Exec{}
	}
	if opts.CIPDRoot == "" {
		opts.CIPDRoot = filepath.Join(opts.SrcRoot, cipdRootDir)
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewClock()
	}
	if opts.ADBPath == "" {
		opts.ADBPath = "adb"
	}
	if opts.BootTimeout <= 0 {
		opts.BootTimeout = 5 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 10 * time.Second
	}
	return &Config{spec: spec, opts: opts, ports: make(map[int]bool)}
}

func (c *Config) emulatorPath() string {
	return filepath.Join(c.opts.CIPDRoot, c.spec.EmulatorPackage.DestPath, "emulator", "emulator")
}

func (c *Config) sdkRoot() string {
	return filepath.Join(c.opts.CIPDRoot, c.spec.SystemImagePackage.DestPath)
}

func (c *Config) avdHome() string {
	return filepath.Join(c.opts.CIPDRoot, c.spec.AVDPackage.DestPath, ".android")
}

// systemImageDir maps "system-images;android-34;google_apis;x86_64" to its
// directory under the SDK root.
func (c *Config) systemImageDir() string {
	return filepath.Join(append([]string{c.sdkRoot()}, strings.Split(c.spec.SystemImageName, ";")...)...)
}

func (c *Config) env() []string {
	return append(os.Environ(),
		"ANDROID_SDK_ROOT="+c.sdkRoot(),
		"ANDROID_EMULATOR_HOME="+c.avdHome(),
		"ANDROID_AVD_HOME="+filepath.Join(c.avdHome(), "avd"),
	)
}

// Install implements Provider. The system image is fetched with sdkmanager
// when missing; the emulator binary and the AVD itself must already exist.
func (c *Config) Install(ctx context.Context) error {
	if _, err := os.Stat(c.emulatorPath()); err != nil {
		return errors.Wrap(err, "emulator binary not found")
	}
	avdDir := filepath.Join(c.avdHome(), "avd", c.spec.AVDName+".avd")
	if _, err := os.Stat(avdDir); err != nil {
		return errors.Wrapf(err, "AVD %s not found", c.spec.AVDName)
	}
	if c.spec.SystemImageName == "" {
		return nil
	}
	if _, err := os.Stat(c.systemImageDir()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to check system image")
	}

	logging.Infof(ctx, "Installing system image %s", c.spec.SystemImageName)
	sdkmanager := filepath.Join(c.sdkRoot(), "cmdline-tools", "latest", "bin", "sdkmanager")
	if err := c.opts.Runner.Run(ctx, []string{sdkmanager, "--sdk_root=" + c.sdkRoot(), c.spec.SystemImageName}); err != nil {
		return errors.Wrapf(err, "failed to install %s", c.spec.SystemImageName)
	}
	return nil
}

// CreateInstance implements Provider. It reserves a console port that is
// free on the host and not used by another instance of c.
func (c *Config) CreateInstance(ctx context.Context) (Instance, error) {
	for port := firstPort; port <= lastPort; port += 2 {
		if c.ports[port] || !portsFree(port, port+1) {
			continue
		}
		c.ports[port] = true
		return &Process{cfg: c, port: port}, nil
	}
	return nil, errors.Errorf("no free emulator port in %d-%d", firstPort, lastPort)
}

func (c *Config) releasePort(port int) {
	delete(c.ports, port)
}

func portsFree(ports ...int) bool {
	for _, p := range ports {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		if err != nil {
			return false
		}
		l.Close()
	}
	return true
}
