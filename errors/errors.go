// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors constructs errors that remember where they were created.
//
// Use New or Errorf for a fresh error, and Wrap or Wrapf to add context to an
// error returned by a device, an emulator or a host command:
//
//	errors.Wrapf(err, "failed to install %s on %s", apk, serial)
//
// Formatting an error with "%+v" prints every link of the chain together with
// the call sites that created it. Errors produced here support the standard
// Unwrap protocol, so Is and As see through them.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"go.chromium.org/wptandroid/errors/stack"
)

// chained is the error type produced by this package.
type chained struct {
	msg   string      // message prepended to cause
	stk   stack.Stack // where the error was created
	cause error       // wrapped error, may be nil
}

// Error implements the error interface.
func (e *chained) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap returns the wrapped error, if any.
func (e *chained) Unwrap() error {
	return e.cause
}

// Format implements fmt.Formatter. The "%+v" verb prints the full chain with
// stack traces.
func (e *chained) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, trace(e))
		return
	}
	io.WriteString(s, e.Error())
}

func trace(err error) string {
	var parts []string
	for err != nil {
		e, ok := err.(*chained)
		if !ok {
			parts = append(parts, err.Error()+"\n\tat ???")
			break
		}
		parts = append(parts, e.msg+"\n"+e.stk.String())
		err = e.cause
	}
	return strings.Join(parts, "\n")
}

// New returns an error with msg, recording the caller's location.
func New(msg string) error {
	return &chained{msg: msg, stk: stack.New(1)}
}

// Errorf is like New but formats its message with fmt.Sprintf.
func Errorf(format string, args ...interface{}) error {
	return &chained{msg: fmt.Sprintf(format, args...), stk: stack.New(1)}
}

// Wrap returns an error that prefixes cause with msg.
// If cause is nil, Wrap behaves like New.
func Wrap(cause error, msg string) error {
	return &chained{msg: msg, stk: stack.New(1), cause: cause}
}

// Wrapf is like Wrap but formats its message with fmt.Sprintf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return &chained{msg: fmt.Sprintf(format, args...), stk: stack.New(1), cause: cause}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
