// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"regexp"
	"strings"
	"testing"
)

func TestShallow(t *testing.T) {
	lines := strings.Split(New(0).String(), "\n")
	re := regexp.MustCompile(`^\tat go\.chromium\.org/wptandroid/errors/stack\.TestShallow \(stack_test\.go:\d+\)$`)
	if !re.MatchString(lines[0]) {
		t.Errorf("First frame %q; want match of %q", lines[0], re)
	}
	if lines[len(lines)-1] == truncated {
		t.Error("Shallow stack was truncated")
	}
}

func recurse(n int) Stack {
	if n == 0 {
		return New(0)
	}
	return recurse(n - 1)
}

func TestTruncated(t *testing.T) {
	lines := strings.Split(recurse(maxFrames).String(), "\n")
	if len(lines) != maxFrames+1 {
		t.Fatalf("Got %d lines; want %d", len(lines), maxFrames+1)
	}
	if last := lines[len(lines)-1]; last != truncated {
		t.Errorf("Last line %q; want %q", last, truncated)
	}
}
