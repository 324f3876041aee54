// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"errors"

	"system-transparency.org/stsmbios/sterror"
)

// Kinds of acquisition failures. Every error returned by this package
// matches exactly one of them with errors.Is.
const (
	// ErrEntryPointNotFound reports that no backend is available or that
	// a scan found no checksum-valid anchor.
	ErrEntryPointNotFound = sterror.Kind("SMBIOS entry point not found")
	// ErrInvalidEntryPoint reports an anchor whose header fails
	// structural validation.
	ErrInvalidEntryPoint = sterror.Kind("invalid SMBIOS entry point")
	// ErrIO reports a failed open, seek or read. The underlying error
	// stays wrapped, so errors.Is(err, fs.ErrNotExist) tells a missing
	// device from an unreadable one.
	ErrIO = sterror.Kind("SMBIOS I/O failure")
	// ErrServiceFailed reports that a platform service was unreachable
	// or did not deliver the requested data.
	ErrServiceFailed = sterror.Kind("platform service acquisition failed")
)

// KindOf returns the kind of err, or an empty Kind if err was not
// produced by this package.
func KindOf(err error) sterror.Kind {
	for _, k := range []sterror.Kind{ErrEntryPointNotFound, ErrInvalidEntryPoint, ErrIO, ErrServiceFailed} {
		if errors.Is(err, k) {
			return k
		}
	}

	return ""
}
