// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testutil provides support code for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempDir creates a directory named after the running test and removes it
// when the test finishes. Failure to create it is fatal to t.
func TempDir(t *testing.T) string {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dir, err := os.MkdirTemp("", "wptandroid_unittest_"+name+".")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// WriteFiles writes files under dir. Keys are slash-separated relative paths
// and values are contents. Parent directories are created as needed.
func WriteFiles(dir string, files map[string]string) error {
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
