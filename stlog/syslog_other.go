// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package stlog

import (
	"runtime"

	"system-transparency.org/stsmbios/sterror"
)

const errInitKlog = sterror.Kind("init klog failed")

func newKernelLogger() (levelLogger, error) {
	return nil, sterror.E(sterror.Stlog, sterror.Op("init kernel log"), errInitKlog,
		"kernel log not supported on "+runtime.GOOS)
}
