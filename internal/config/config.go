// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the options of a wpt_android invocation.
package config

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/command"
	"go.chromium.org/wptandroid/internal/logging"
	"go.chromium.org/wptandroid/internal/product"
	"go.chromium.org/wptandroid/internal/wpt"
)

// Environment variables set by swarming when a run is sharded.
const (
	totalShardsEnv = "GTEST_TOTAL_SHARDS"
	shardIndexEnv  = "GTEST_SHARD_INDEX"
)

// unsetShard marks a sharding flag that was not given; its value then comes
// from the environment.
const unsetShard = -1

// MutableConfig is similar to Config, but its fields are mutable.
// Call Freeze to obtain a Config from MutableConfig.
type MutableConfig struct {
	// See Config for descriptions of these fields.

	Product         string
	APKs            []string
	ShellAPK        string
	WebViewProvider string
	ReleaseChannel  string
	PackageName     string
	ADBBinary       string

	AVDConfig      string
	EmulatorWindow bool
	Processes      int

	SrcRoot         string
	BuildOutDir     string
	Python          string
	WebdriverBinary string

	TestFilter []string
	Tests      []string
	WPTArgs    []string

	AdditionalExpectations            []string
	IgnoreDefaultExpectations         bool
	IgnoreBrowserSpecificExpectations bool

	TotalShards     int
	ShardIndex      int
	Repeat          int
	RetryUnexpected int
	Output          string

	Verbose      int
	LogFile      string
	DefaultsFile string

	registry *product.Registry
}

// Config contains the options of one invocation. All Config values are frozen
// and cannot be altered after construction.
type Config struct {
	m *MutableConfig
}

// NewMutableConfig returns a MutableConfig whose -product flag accepts the
// names in reg.
func NewMutableConfig(reg *product.Registry) *MutableConfig {
	return &MutableConfig{registry: reg, RetryUnexpected: -1, TotalShards: unsetShard, ShardIndex: unsetShard}
}

// SetDeviceFlags adds flags selecting and provisioning devices to f.
func (c *MutableConfig) SetDeviceFlags(f *flag.FlagSet) {
	pf := command.NewEnumFlag(c.registry.Canonical(), func(v string) { c.Product = v }, "clank")
	f.Var(pf, "product", fmt.Sprintf("product to test (%s)", pf.QuotedValues()))
	f.Var(pf, "p", "short for -product")

	for _, n := range []string{"apk", "chrome-apk", "weblayer-support"} {
		f.Var((*command.RepeatedFlag)(&c.APKs), n, "path to an APK to install (repeatable)")
	}
	for _, n := range []string{"shell-apk", "system-webview-shell", "weblayer-shell"} {
		f.StringVar(&c.ShellAPK, n, "", "path to a shell APK to install (WebView and WebLayer only)")
	}
	f.StringVar(&c.WebViewProvider, "webview-provider", "", "path to a WebView provider APK to install (WebView only)")
	f.StringVar(&c.ReleaseChannel, "release-channel", "", "install WebView from a release channel (WebView only)")
	for _, n := range []string{"package-name", "chrome-package-name"} {
		f.StringVar(&c.PackageName, n, "", "package name to run tests against")
	}
	f.StringVar(&c.ADBBinary, "adb-binary", "", "path to the adb binary (default: adb in PATH)")

	f.StringVar(&c.AVDConfig, "avd-config", "", "path to an AVD config textproto; emulators are started from it")
	f.BoolVar(&c.EmulatorWindow, "emulator-window", false, "show emulator windows")
	f.IntVar(&c.Processes, "processes", 1, "number of emulators to start")
	f.IntVar(&c.Processes, "j", 1, "short for -processes")

	f.StringVar(&c.SrcRoot, "src-root", "", "Chromium src directory (default: current directory)")
	f.StringVar(&c.Python, "python", "python3", "Python interpreter for helper scripts")
	f.IntVar(&c.Verbose, "verbose", 0, "log verbosity; 1 logs progress and 2 adds debug messages")
	f.IntVar(&c.Verbose, "v", 0, "short for -verbose")
	f.StringVar(&c.LogFile, "log-file", "", "also write full logs to this file")
	f.StringVar(&c.DefaultsFile, "defaults", "", "YAML file with default flag values")
}

// SetRunFlags adds flags controlling the test run, in addition to the device
// flags, to f.
func (c *MutableConfig) SetRunFlags(f *flag.FlagSet) {
	c.SetDeviceFlags(f)

	f.StringVar(&c.WebdriverBinary, "webdriver-binary", "", "path of the webdriver binary matching the product version (required)")
	f.StringVar(&c.BuildOutDir, "build-out-dir", "", "build output directory used to symbolize crashes")
	for _, n := range []string{"test-filter", "gtest_filter"} {
		f.Var(command.NewListFlag(":", func(v []string) { c.TestFilter = v }, nil), n, "colon-separated list of test names or directories")
	}
	f.Var((*command.RepeatedFlag)(&c.AdditionalExpectations), "additional-expectations", "path to an additional expectations file (repeatable)")
	f.BoolVar(&c.IgnoreDefaultExpectations, "ignore-default-expectations", false, "do not use the default TestExpectations files")
	f.BoolVar(&c.IgnoreBrowserSpecificExpectations, "ignore-browser-specific-expectations", false, "ignore the product's expectation files")

	f.IntVar(&c.TotalShards, "total-shards", unsetShard, "total number of shards (default: $"+totalShardsEnv+")")
	f.IntVar(&c.ShardIndex, "shard-index", unsetShard, "0-based index of this shard (default: $"+shardIndexEnv+")")
	f.IntVar(&c.Repeat, "repeat", 0, "number of times to run each test")
	f.IntVar(&c.RetryUnexpected, "retry-unexpected", -1, "retries for unexpected results (default: 0 with explicit tests, else 3)")
	f.StringVar(&c.Output, "output", "", "path of the JSON results (default: <build-out-dir>/results.json)")

	wpt.SetPassThroughFlags(f, &c.WPTArgs)
}

// DeriveDefaults sets default config values to unset members, possibly
// deriving from already set members. It should be called after flags were
// parsed and the defaults file was loaded.
func (c *MutableConfig) DeriveDefaults() error {
	if c.Processes < 1 {
		c.Processes = 1
	}
	if c.SrcRoot == "" {
		c.SrcRoot = "."
	}
	var err error
	if c.SrcRoot, err = filepath.Abs(c.SrcRoot); err != nil {
		return errors.Wrap(err, "invalid -src-root")
	}
	if c.ADBBinary == "" {
		if p, err := exec.LookPath("adb"); err == nil {
			c.ADBBinary = p
		}
	}
	for _, p := range []*string{&c.ADBBinary, &c.AVDConfig} {
		if *p == "" {
			continue
		}
		if *p, err = filepath.Abs(*p); err != nil {
			return err
		}
	}

	if c.TotalShards == unsetShard {
		if c.TotalShards, err = intFromEnv(totalShardsEnv); err != nil {
			return err
		}
	}
	if c.ShardIndex == unsetShard {
		if c.ShardIndex, err = intFromEnv(shardIndexEnv); err != nil {
			return err
		}
	}
	if c.TotalShards < 0 {
		return errors.Errorf("%d is an invalid number of shards", c.TotalShards)
	}
	if c.TotalShards > 0 && (c.ShardIndex < 0 || c.ShardIndex >= c.TotalShards) {
		return errors.Errorf("shard index %d is out of range", c.ShardIndex)
	}
	if c.Repeat < 0 {
		return errors.Errorf("-repeat must not be negative, got %d", c.Repeat)
	}

	if c.Output == "" && c.BuildOutDir != "" {
		c.Output = filepath.Join(c.BuildOutDir, "results.json")
	}
	return nil
}

func intFromEnv(name string) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid $%s", name)
	}
	return n, nil
}

// Freeze returns a frozen configuration object.
func (c *MutableConfig) Freeze() *Config {
	return &Config{m: c}
}

// Product is the canonical name of the product under test.
func (c *Config) Product() string { return c.m.Product }

// ADBBinary is the adb binary, or "" to use the one in PATH.
func (c *Config) ADBBinary() string { return c.m.ADBBinary }

// AVDConfig is the AVD configuration emulators are started from, or "".
func (c *Config) AVDConfig() string { return c.m.AVDConfig }

// EmulatorWindow is whether emulators show a window.
func (c *Config) EmulatorWindow() bool { return c.m.EmulatorWindow }

// Processes is the number of emulators to start.
func (c *Config) Processes() int { return c.m.Processes }

// SrcRoot is the absolute path of the Chromium src directory.
func (c *Config) SrcRoot() string { return c.m.SrcRoot }

// BuildOutDir is the build output directory.
func (c *Config) BuildOutDir() string { return c.m.BuildOutDir }

// WebdriverBinary is the webdriver binary.
func (c *Config) WebdriverBinary() string { return c.m.WebdriverBinary }

// LogFile receives full logs when set.
func (c *Config) LogFile() string { return c.m.LogFile }

// LogLevel is the console log level for the -verbose setting.
func (c *Config) LogLevel() logging.Level {
	switch {
	case c.m.Verbose >= 2:
		return logging.LevelDebug
	case c.m.Verbose == 1:
		return logging.LevelInfo
	default:
		return logging.LevelWarning
	}
}

// ProductOptions returns the options products are built from.
func (c *Config) ProductOptions() product.Options {
	return product.Options{
		APKs:            append([]string(nil), c.m.APKs...),
		ShellAPK:        c.m.ShellAPK,
		WebViewProvider: c.m.WebViewProvider,
		ReleaseChannel:  c.m.ReleaseChannel,
		PackageName:     c.m.PackageName,
		ADBBinary:       c.m.ADBBinary,
		SrcRoot:         c.m.SrcRoot,
		Python:          c.m.Python,
	}
}

// WPTOptions returns the options of the wptrunner invocation.
func (c *Config) WPTOptions() *wpt.Options {
	return &wpt.Options{
		SrcRoot:                           c.m.SrcRoot,
		Python:                            c.m.Python,
		WebdriverBinary:                   c.m.WebdriverBinary,
		SymbolsPath:                       c.m.BuildOutDir,
		TestFilter:                        append([]string(nil), c.m.TestFilter...),
		Tests:                             append([]string(nil), c.m.Tests...),
		TotalShards:                       c.m.TotalShards,
		ShardIndex:                        c.m.ShardIndex,
		Repeat:                            c.m.Repeat,
		RetryUnexpected:                   c.m.RetryUnexpected,
		Output:                            c.m.Output,
		PassThrough:                       append([]string(nil), c.m.WPTArgs...),
		AdditionalExpectations:            append([]string(nil), c.m.AdditionalExpectations...),
		IgnoreDefaultExpectations:         c.m.IgnoreDefaultExpectations,
		IgnoreBrowserSpecificExpectations: c.m.IgnoreBrowserSpecificExpectations,
	}
}
