// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// SinkLogger filters messages by level, optionally stamps them, and hands
// them to a Sink.
type SinkLogger struct {
	level     Level
	timestamp bool
	sink      Sink
}

// NewSinkLogger returns a SinkLogger passing messages at level or above to
// sink. If timestamp is true, an RFC 3339 UTC timestamp is prepended.
func NewSinkLogger(level Level, timestamp bool, sink Sink) *SinkLogger {
	return &SinkLogger{level: level, timestamp: timestamp, sink: sink}
}

// Log implements Logger.
func (l *SinkLogger) Log(level Level, ts time.Time, msg string) {
	if level < l.level {
		return
	}
	if level >= LevelWarning {
		msg = level.String() + ": " + msg
	}
	if l.timestamp {
		msg = ts.UTC().Format("2006-01-02T15:04:05.000000Z ") + msg
	}
	l.sink.Log(msg)
}

// Sink is a log destination such as the console or a log file.
type Sink interface {
	Log(msg string)
}

// FuncSink calls a function for every message. Calls are serialized.
type FuncSink struct {
	mu sync.Mutex
	f  func(msg string)
}

// NewFuncSink returns a FuncSink calling f.
func NewFuncSink(f func(msg string)) *FuncSink {
	return &FuncSink{f: f}
}

// Log implements Sink.
func (s *FuncSink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f(msg)
}

// WriterSink writes one line per message to an io.Writer. Writes are
// serialized.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Log implements Sink.
func (s *WriterSink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, msg)
}
