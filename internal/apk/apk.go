// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package apk reads metadata from Android package files.
package apk

import (
	"sync"

	"github.com/shogo82148/androidbinary/apk"

	"go.chromium.org/wptandroid/errors"
)

// Resolver returns the package name declared by the APK at path.
type Resolver func(path string) (string, error)

// PackageName reads the package name from the binary manifest of the APK at
// path.
func PackageName(path string) (string, error) {
	pkg, err := apk.OpenFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	defer pkg.Close()
	name := pkg.PackageName()
	if name == "" {
		return "", errors.Errorf("%s declares no package name", path)
	}
	return name, nil
}

// Cached wraps r so each path is resolved at most once. Failures are not
// cached.
func Cached(r Resolver) Resolver {
	var mu sync.Mutex
	names := make(map[string]string)
	return func(path string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if n, ok := names[path]; ok {
			return n, nil
		}
		n, err := r(path)
		if err != nil {
			return "", err
		}
		names[path] = n
		return n, nil
	}
}

// Static returns a Resolver answering from a fixed path-to-package map.
func Static(names map[string]string) Resolver {
	return func(path string) (string, error) {
		if n, ok := names[path]; ok {
			return n, nil
		}
		return "", errors.Errorf("unknown APK %s", path)
	}
}
