// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command contains helpers shared by the wpt_android subcommands.
package command

import (
	"fmt"
	"io"
	"strings"
)

// StatusError is an error carrying the process exit status to use.
type StatusError struct {
	msg    string
	status int
}

// NewStatusErrorf returns a StatusError with a formatted message.
func NewStatusErrorf(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{msg: fmt.Sprintf(format, args...), status: status}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.msg, e.status)
}

// Status returns the exit status.
func (e *StatusError) Status() int {
	return e.status
}

// WriteError writes err to w as a single terminated line and returns the exit
// status to use: the status of a *StatusError, otherwise 1.
func WriteError(w io.Writer, err error) int {
	msg, status := err.Error(), 1
	if se, ok := err.(*StatusError); ok {
		msg, status = se.msg, se.status
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	io.WriteString(w, msg)
	return status
}
