// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"go.chromium.org/wptandroid/errors"
)

// LoadDefaultsFile applies flag values from the YAML file at path to the flags
// of f that were not set on the command line. Keys are flag names; a list
// value sets a repeatable flag once per element:
//
//	product: webview
//	webview-provider: out/Release/apks/SystemWebView.apk
//	apk:
//	  - out/Release/apks/Extra.apk
func LoadDefaultsFile(f *flag.FlagSet, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read defaults file")
	}
	var defaults map[string]interface{}
	if err := yaml.Unmarshal(b, &defaults); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	explicit := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })

	names := make([]string, 0, len(defaults))
	for n := range defaults {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if f.Lookup(n) == nil {
			return errors.Errorf("%s: unknown flag %q", path, n)
		}
		if explicit[n] {
			continue
		}
		vals, ok := defaults[n].([]interface{})
		if !ok {
			vals = []interface{}{defaults[n]}
		}
		for _, v := range vals {
			if err := f.Set(n, fmt.Sprint(v)); err != nil {
				return errors.Wrapf(err, "%s: invalid value for %s", path, n)
			}
		}
	}
	return nil
}
