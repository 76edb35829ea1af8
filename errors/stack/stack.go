// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack captures call stacks for the errors package.
package stack

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	maxFrames = 8        // frames kept per stack
	truncated = "\t..." // last line of a stack cut at maxFrames
)

// Stack is a captured list of program counters.
type Stack []uintptr

// New captures the current stack. skip=0 makes the caller of New the
// innermost frame.
func New(skip int) Stack {
	pcs := make([]uintptr, maxFrames+1)
	return Stack(pcs[:runtime.Callers(skip+2, pcs)])
}

// String renders one "\tat func (file:line)" line per frame.
func (s Stack) String() string {
	var lines []string
	frames := runtime.CallersFrames(s)
	for {
		f, more := frames.Next()
		lines = append(lines, fmt.Sprintf("\tat %s (%s:%d)", f.Function, filepath.Base(f.File), f.Line))
		if !more {
			break
		}
		if len(lines) >= maxFrames {
			lines = append(lines, truncated)
			break
		}
	}
	return strings.Join(lines, "\n")
}
