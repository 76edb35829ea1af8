// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type loggerKey struct{}

type prefixKey struct{}

// AttachLogger returns a context carrying logger. Messages logged through the
// returned context also reach loggers attached to ctx.
func AttachLogger(ctx context.Context, logger Logger) context.Context {
	if parent, ok := loggerFrom(ctx); ok {
		logger = NewMultiLogger(logger, parent)
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// HasLogger reports whether a logger is attached to ctx.
func HasLogger(ctx context.Context) bool {
	_, ok := loggerFrom(ctx)
	return ok
}

// WithPrefix returns a context whose messages start with prefix, e.g. a
// device serial.
func WithPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, prefixKey{}, prefix)
}

func loggerFrom(ctx context.Context) (Logger, bool) {
	l, ok := ctx.Value(loggerKey{}).(Logger)
	return l, ok
}

// Info logs at LevelInfo.
func Info(ctx context.Context, args ...interface{}) {
	emit(ctx, LevelInfo, fmt.Sprint(args...))
}

// Infof logs at LevelInfo with fmt.Sprintf formatting.
func Infof(ctx context.Context, format string, args ...interface{}) {
	emit(ctx, LevelInfo, fmt.Sprintf(format, args...))
}

// Debug logs at LevelDebug.
func Debug(ctx context.Context, args ...interface{}) {
	emit(ctx, LevelDebug, fmt.Sprint(args...))
}

// Debugf logs at LevelDebug with fmt.Sprintf formatting.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	emit(ctx, LevelDebug, fmt.Sprintf(format, args...))
}

// Warning logs at LevelWarning.
func Warning(ctx context.Context, args ...interface{}) {
	emit(ctx, LevelWarning, fmt.Sprint(args...))
}

// Warningf logs at LevelWarning with fmt.Sprintf formatting.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	emit(ctx, LevelWarning, fmt.Sprintf(format, args...))
}

func emit(ctx context.Context, level Level, msg string) {
	ts := time.Now()
	logger, ok := loggerFrom(ctx)
	if !ok {
		return
	}
	if p, ok := ctx.Value(prefixKey{}).(string); ok {
		msg = p + msg
	}
	logger.Log(level, ts, strings.ToValidUTF8(msg, ""))
}
