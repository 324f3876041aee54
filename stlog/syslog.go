// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package stlog

import (
	"fmt"

	"github.com/u-root/u-root/pkg/ulog"
	"system-transparency.org/stsmbios/sterror"
)

type kernelLogger struct {
	out   *ulog.KLog
	level LogLevel
}

const errInitKlog = sterror.Kind("init klog failed")

func newKernelLogger() (*kernelLogger, error) {
	klog := ulog.KernelLog
	klog.SetLogLevel(ulog.KLogNotice)

	if err := klog.SetConsoleLogLevel(ulog.KLogInfo); err != nil {
		return nil, sterror.E(sterror.Stlog, sterror.Op("init kernel log"), errInitKlog, err)
	}

	return &kernelLogger{
		out:   klog,
		level: DebugLevel,
	}, nil
}

func (l *kernelLogger) setLevel(level LogLevel) {
	l.level = level
}

func (l *kernelLogger) logLevel() LogLevel {
	return l.level
}

func (l *kernelLogger) print(level LogLevel, tag, format string, v ...interface{}) {
	if l.level >= level {
		l.out.Print(tag + prefix + fmt.Sprintf(format, v...))
	}
}

func (l *kernelLogger) error(format string, v ...interface{}) {
	l.print(ErrorLevel, errorTag, format, v...)
}

func (l *kernelLogger) warn(format string, v ...interface{}) {
	l.print(WarnLevel, warnTag, format, v...)
}

func (l *kernelLogger) info(format string, v ...interface{}) {
	l.print(InfoLevel, infoTag, format, v...)
}

func (l *kernelLogger) debug(format string, v ...interface{}) {
	l.print(DebugLevel, debugTag, format, v...)
}
