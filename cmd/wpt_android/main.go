// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the wpt_android executable, which provisions
// Android devices and runs web platform tests against Chrome, WebView or
// WebLayer on them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"go.chromium.org/wptandroid/internal/command"
	"go.chromium.org/wptandroid/internal/product"
)

// Version is the version info of this command. It is filled in at build time.
var Version = "<unknown>"

// doMain implements the main body of the program. It's a separate function so
// that its deferred functions will run before os.Exit makes the program exit
// immediately.
func doMain() int {
	reg, err := product.NewRegistry(product.Variants()...)
	if err != nil {
		return command.WriteError(os.Stderr, err)
	}
	e := newRealEnv()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(newRunCmd(reg, e, os.Stderr), "")
	subcommands.Register(newDevicesCmd(reg, e, os.Stdout, os.Stderr), "")
	subcommands.Register(newVersionCmd(reg, e, os.Stdout, os.Stderr), "")
	subcommands.Register(newProductsCmd(reg, os.Stdout), "")

	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("wpt_android version %s\n", Version)
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	command.InstallSignalHandler(os.Stderr, cancel)

	return int(subcommands.Execute(ctx))
}

func main() {
	os.Exit(doMain())
}
