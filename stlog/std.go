// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stlog

import (
	"fmt"
	"io"
	"log"
)

type standardLogger struct {
	out   *log.Logger
	level LogLevel
}

func newStandardLogger(w io.Writer) *standardLogger {
	return &standardLogger{
		out:   log.New(w, "", 0),
		level: DebugLevel,
	}
}

func (l *standardLogger) setLevel(level LogLevel) {
	l.level = level
}

func (l *standardLogger) logLevel() LogLevel {
	return l.level
}

func (l *standardLogger) print(level LogLevel, tag, format string, v ...interface{}) {
	if l.level >= level {
		l.out.Print(tag + prefix + fmt.Sprintf(format, v...))
	}
}

func (l *standardLogger) error(format string, v ...interface{}) {
	l.print(ErrorLevel, errorTag, format, v...)
}

func (l *standardLogger) warn(format string, v ...interface{}) {
	l.print(WarnLevel, warnTag, format, v...)
}

func (l *standardLogger) info(format string, v ...interface{}) {
	l.print(InfoLevel, infoTag, format, v...)
}

func (l *standardLogger) debug(format string, v ...interface{}) {
	l.print(DebugLevel, debugTag, format, v...)
}
