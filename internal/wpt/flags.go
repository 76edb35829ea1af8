// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package wpt

import (
	"flag"
	"strconv"
)

// BinaryFlags are browser flags forwarded to wptrunner as --binary-arg.
var BinaryFlags = []string{
	"enable-features",
	"disable-features",
	"force-fieldtrials",
	"force-fieldtrial-params",
}

// PassThroughFlags take one value and are forwarded to wptrunner unchanged.
var PassThroughFlags = []string{
	"include",
	"include-file",
	"log-raw",
	"log-html",
	"log-xunit",
	"webdriver-arg",
}

// passThrough is a repeatable flag.Value appending "--name=value" to dst,
// optionally wrapped in --binary-arg.
type passThrough struct {
	name   string
	binary bool
	dst    *[]string
}

func (f *passThrough) String() string { return "" }

func (f *passThrough) Set(v string) error {
	a := "--" + f.name + "=" + v
	if f.binary {
		a = "--binary-arg=" + a
	}
	*f.dst = append(*f.dst, a)
	return nil
}

// listTests is a boolean pass-through flag.
type listTests struct{ dst *[]string }

func (f *listTests) String() string   { return "" }
func (f *listTests) IsBoolFlag() bool { return true }

func (f *listTests) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if b {
		*f.dst = append(*f.dst, "--list-tests")
	}
	return nil
}

// SetPassThroughFlags registers every pass-through flag on fs. Arguments are
// appended to dst in command-line order.
func SetPassThroughFlags(fs *flag.FlagSet, dst *[]string) {
	for _, n := range BinaryFlags {
		fs.Var(&passThrough{name: n, binary: true, dst: dst}, n, "browser flag passed through to wptrunner (repeatable)")
	}
	for _, n := range PassThroughFlags {
		fs.Var(&passThrough{name: n, dst: dst}, n, "passed through to wptrunner (repeatable)")
	}
	fs.Var(&listTests{dst: dst}, "list-tests", "list the tests that would run")
}
