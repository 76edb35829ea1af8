// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"go.chromium.org/wptandroid/errors"
	"go.chromium.org/wptandroid/internal/logging"
)

const (
	colorWarning = "\033[33m"
	colorReset   = "\033[0m"
)

// consoleSink returns a sink writing to w. Warnings are highlighted if w is a
// terminal.
func consoleSink(w io.Writer) logging.Sink {
	ws := logging.NewWriterSink(w)
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ws
	}
	return logging.NewFuncSink(func(msg string) {
		if strings.Contains(msg, logging.LevelWarning.String()+": ") {
			msg = colorWarning + msg + colorReset
		}
		ws.Log(msg)
	})
}

// attachLoggers attaches a console logger at level writing to console and,
// if logFile is non-empty, a debug logger writing to that file. The returned
// function closes the file.
func attachLoggers(ctx context.Context, console io.Writer, level logging.Level, logFile string) (context.Context, func(), error) {
	ml := logging.NewMultiLogger(logging.NewSinkLogger(level, true, consoleSink(console)))
	closeFunc := func() {}
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create log file")
		}
		ml.AddLogger(logging.NewSinkLogger(logging.LevelDebug, true, logging.NewWriterSink(f)))
		closeFunc = func() { f.Close() }
	}
	return logging.AttachLogger(ctx, ml), closeFunc, nil
}
