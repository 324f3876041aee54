// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/stlog"
)

var (
	ErrMissingBackends  = InvalidError("at least one backend must be enabled")
	ErrUnknownBackend   = InvalidError("unknown backend")
	ErrDuplicateBackend = InvalidError("backend enabled more than once")
	ErrUnknownLogLevel  = InvalidError("unknown log level")
	ErrMissingFormat    = InvalidError("output format must be set")
	ErrUnknownFormat    = InvalidError("unknown output format")
)

// Validater is the interface that wraps the Validate method.
//
// Validate takes Opts and performs validation on it. If Opts is not
// valid and InvalidError is returned.
type Validater interface {
	Validate(*Opts) error
}

type validFunc func(*Opts) error

// ValidationSet is a collection of validation functions.
type ValidationSet []validFunc

// Validate implements Validater.
func (v *ValidationSet) Validate(opts *Opts) error {
	for _, f := range *v {
		if err := f(opts); err != nil {
			return err
		}
	}

	return nil
}

// AcquisitionValidation is a Validater for acquisition related fields of Opts.
func AcquisitionValidation() *ValidationSet {
	return &ValidationSet{
		checkBackends,
	}
}

// OutputValidation is a Validater for output related fields of Opts.
func OutputValidation() *ValidationSet {
	return &ValidationSet{
		checkLogLevel,
		checkFormat,
	}
}

// Validate runs all validation sets on opts.
func Validate(opts *Opts) error {
	for _, v := range []Validater{AcquisitionValidation(), OutputValidation()} {
		if err := v.Validate(opts); err != nil {
			return err
		}
	}

	return nil
}

func checkBackends(opts *Opts) error {
	if len(opts.Backends) == 0 {
		return ErrMissingBackends
	}

	seen := make(map[smbios.BackendKind]bool)

	for _, b := range opts.Backends {
		if b < smbios.BackendExport || b > smbios.BackendService {
			return ErrUnknownBackend
		}

		if seen[b] {
			return ErrDuplicateBackend
		}

		seen[b] = true
	}

	return nil
}

func checkLogLevel(opts *Opts) error {
	if opts.LogLevel < stlog.ErrorLevel || opts.LogLevel > stlog.DebugLevel {
		return ErrUnknownLogLevel
	}

	return nil
}

func checkFormat(opts *Opts) error {
	switch opts.Format {
	case FormatUnset:
		return ErrMissingFormat
	case FormatText, FormatYAML:
		return nil
	default:
		return ErrUnknownFormat
	}
}
