// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stlog exposes leveled logging capabilities.
//
// stlog wraps two loggers and adds log levels to them:
// There is a standard "log" package logger writing to stderr and another
// using the kernel syslog system.
package stlog

import (
	"os"
	"strings"
	"sync"

	"system-transparency.org/stsmbios/sterror"
)

const (
	prefix   string = "stsmbios: "
	errorTag string = "[ERROR] "
	warnTag  string = "[WARN]  "
	infoTag  string = "[INFO]  "
	debugTag string = "[DEBUG] "
)

type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

// String implements fmt.Stringer.
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	if l < ErrorLevel || l > DebugLevel {
		return nil, sterror.E(sterror.Stlog, sterror.Op("marshal level"), ErrUnknownLevel)
	}

	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LogLevel) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*l = v

	return nil
}

// ErrUnknownLevel is returned by ParseLevel for names that do not denote
// a log level.
const ErrUnknownLevel = sterror.Kind("unknown log level")

// ParseLevel returns the LogLevel named by s. Matching is case insensitive.
func ParseLevel(s string) (LogLevel, error) {
	for _, l := range []LogLevel{ErrorLevel, WarnLevel, InfoLevel, DebugLevel} {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}

	return DebugLevel, sterror.E(sterror.Stlog, sterror.Op("parse level"), ErrUnknownLevel, s)
}

type LogOutput int

const (
	StdError LogOutput = iota
	KernelSyslog
)

//nolint:gochecknoglobals
var (
	mu  sync.Mutex
	stl levelLogger = newStandardLogger(os.Stderr)
)

type levelLogger interface {
	setLevel(level LogLevel)
	logLevel() LogLevel
	error(format string, v ...interface{})
	warn(format string, v ...interface{})
	info(format string, v ...interface{})
	debug(format string, v ...interface{})
}

func logger() levelLogger {
	mu.Lock()
	defer mu.Unlock()

	return stl
}

// SetOutput sets the packages underlying logger. The current log level
// is carried over. If the kernel log cannot be initialized the previous
// logger stays active and the error is returned.
func SetOutput(o LogOutput) error {
	mu.Lock()
	defer mu.Unlock()

	level := stl.logLevel()

	switch o {
	case KernelSyslog:
		kl, err := newKernelLogger()
		if err != nil {
			return sterror.E(sterror.Stlog, sterror.Op("set output"), err)
		}

		stl = kl
	default:
		stl = newStandardLogger(os.Stderr)
	}

	stl.setLevel(level)

	return nil
}

// SetLevel sets the logging level of stlog package.
// Unknown levels fall back to DebugLevel.
func SetLevel(l LogLevel) {
	switch l {
	case ErrorLevel, WarnLevel, InfoLevel, DebugLevel:
	default:
		l = DebugLevel
	}

	logger().setLevel(l)
}

// Level returns the log level set.
func Level() LogLevel {
	return logger().logLevel()
}

// Error prints error messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Error(format string, v ...interface{}) {
	logger().error(format, v...)
}

// Warn prints warning messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Warn(format string, v ...interface{}) {
	logger().warn(format, v...)
}

// Info prints info messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Info(format string, v ...interface{}) {
	logger().info(format, v...)
}

// Debug prints debug messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Debug(format string, v ...interface{}) {
	logger().debug(format, v...)
}
