// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package wpt assembles and runs wptrunner commands for Android products.
package wpt

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.chromium.org/wptandroid/internal/product"
)

// Options holds the settings of a wptrunner invocation.
type Options struct {
	// SrcRoot is the Chromium checkout.
	SrcRoot string
	// Python runs the metadata builder.
	Python string
	// WPTBinary is the wpt entry point. Empty means the copy in SrcRoot.
	WPTBinary string
	// WebdriverBinary is the chromedriver matching the product version.
	WebdriverBinary string
	// SymbolsPath is the build output directory used to symbolize crashes.
	SymbolsPath string

	// TestFilter lists test names or directories to include.
	TestFilter []string
	// Tests are positional test paths given after the product name.
	Tests []string
	// TotalShards and ShardIndex select a hash-based chunk of the tests.
	// TotalShards of zero disables sharding.
	TotalShards, ShardIndex int
	// Repeat runs every test this many times when positive.
	Repeat int
	// RetryUnexpected is the retry limit for unexpected results. Negative
	// means 0 when tests are named explicitly and 3 otherwise.
	RetryUnexpected int
	// Output is the path of the Chromium-format JSON results.
	Output string
	// PassThrough are extra wptrunner arguments, already translated.
	PassThrough []string

	// AdditionalExpectations are extra expectation files for the metadata
	// builder.
	AdditionalExpectations []string
	// IgnoreDefaultExpectations drops the default TestExpectations files.
	IgnoreDefaultExpectations bool
	// IgnoreBrowserSpecificExpectations drops the product's own files.
	IgnoreBrowserSpecificExpectations bool
}

// Binary arguments every Android product runs with.
var defaultBinaryArgs = []string{
	"--enable-blink-features=MojoJS,MojoJSTest",
	"--enable-blink-test-features",
	"--disable-field-trial-config",
	"--enable-features=DownloadService<DownloadServiceStudy",
	"--force-fieldtrials=DownloadServiceStudy/Enabled",
	"--force-fieldtrial-params=DownloadServiceStudy.Enabled:start_up_delay_ms/0",
}

func (o *Options) wptBinary() string {
	if o.WPTBinary != "" {
		return o.WPTBinary
	}
	return filepath.Join(o.SrcRoot, "third_party", "wpt_tools", "wpt", "wpt")
}

func (o *Options) blinkTool(name string) string {
	return filepath.Join(o.SrcRoot, "third_party", "blink", "tools", name)
}

// hasExplicitTests reports whether the tests to run were named.
func (o *Options) hasExplicitTests() bool {
	if len(o.TestFilter) > 0 || len(o.Tests) > 0 {
		return true
	}
	for _, a := range o.PassThrough {
		if strings.HasPrefix(a, "--include=") || strings.HasPrefix(a, "--include-file=") {
			return true
		}
	}
	return false
}

func (o *Options) retryLimit() int {
	if o.RetryUnexpected >= 0 {
		return o.RetryUnexpected
	}
	if o.hasExplicitTests() {
		return 0
	}
	return 3
}

// StripWPTPath removes the web_tests prefix of an upstream WPT test path.
func StripWPTPath(p string) string {
	return strings.TrimPrefix(p, "external/wpt/")
}

// RunArgs returns the "wpt run" command line. productName is the canonical
// product name, productArgs come from the session and metadataDir holds
// the built metadata ("" to omit it).
func RunArgs(o *Options, productName string, productArgs []string, metadataDir string) []string {
	args := []string{
		o.wptBinary(),
		"--venv=" + o.SrcRoot,
		"--skip-venv-setup",
		"run",
		"--webdriver-binary", o.WebdriverBinary,
		"--symbols-path", o.SymbolsPath,
		"--stackwalk-binary", filepath.Join(o.SrcRoot, "build", "android", "tombstones.py"),
		"--headless",
		"--exclude=webdriver",
		"--exclude=infrastructure/webdriver",
	}
	for _, a := range defaultBinaryArgs {
		args = append(args, "--binary-arg="+a)
	}
	args = append(args, productArgs...)
	if metadataDir != "" {
		args = append(args, "--metadata", metadataDir)
	}
	for _, t := range o.TestFilter {
		args = append(args, "--include", StripWPTPath(t))
	}
	if o.TotalShards > 0 {
		args = append(args,
			"--total-chunks="+strconv.Itoa(o.TotalShards),
			"--this-chunk="+strconv.Itoa(o.ShardIndex+1),
			"--chunk-type=hash")
	}
	if o.Repeat > 0 {
		args = append(args, "--repeat="+strconv.Itoa(o.Repeat))
	}
	args = append(args, fmt.Sprintf("--retry-unexpected=%d", o.retryLimit()))
	if o.Output != "" {
		args = append(args, "--log-chromium="+o.Output)
	}
	args = append(args, o.PassThrough...)
	args = append(args, productName)
	return append(args, o.Tests...)
}

// MetadataArgs returns the command building wptrunner metadata from web test
// expectations into dir. expectations are the product's own files.
func MetadataArgs(o *Options, productName string, expectations []string, dir string) []string {
	args := []string{
		o.Python,
		o.blinkTool("build_wpt_metadata.py"),
		"--android-product", productName,
		"--metadata-output-dir", dir,
		"--use-subtest-results",
	}
	if o.IgnoreDefaultExpectations {
		args = append(args, "--ignore-default-expectations")
	}
	files := append([]string{product.DisabledTestsFile(o.SrcRoot)}, o.AdditionalExpectations...)
	if !o.IgnoreBrowserSpecificExpectations {
		files = append(files, expectations...)
	}
	for _, f := range files {
		args = append(args, "--additional-expectations="+f)
	}
	return args
}
