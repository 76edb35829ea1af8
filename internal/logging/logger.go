// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging routes log messages through loggers attached to a
// context.Context.
package logging

import (
	"sync"
	"time"
)

// Level is the importance of a log message. Larger is more important.
type Level int

const (
	// LevelDebug is for command lines, device output and other detail.
	LevelDebug Level = iota
	// LevelInfo is for progress messages.
	LevelInfo
	// LevelWarning is for failures that do not stop the session, such as a
	// failed uninstall during teardown.
	LevelWarning
)

// String returns a short label for l.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Logger consumes messages logged through a context.
type Logger interface {
	// Log is called once per message.
	Log(level Level, ts time.Time, msg string)
}

// MultiLogger fans messages out to several loggers.
type MultiLogger struct {
	mu      sync.Mutex
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger writing to loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards a message to every underlying logger.
func (ml *MultiLogger) Log(level Level, ts time.Time, msg string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, l := range ml.loggers {
		l.Log(level, ts, msg)
	}
}

// AddLogger starts forwarding messages to logger.
func (ml *MultiLogger) AddLogger(logger Logger) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.loggers = append(ml.loggers, logger)
}
