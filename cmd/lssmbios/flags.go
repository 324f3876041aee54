// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"strconv"

	"system-transparency.org/stsmbios/opts"
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/stlog"
)

// flagLoader overrides Opts with the flags given on the command line.
// Unset flags leave Opts untouched.
type flagLoader struct {
	backends  []string
	logLevel  string
	kernelLog *bool
	format    string
}

// Load implements opts.Loader.
func (f flagLoader) Load(o *opts.Opts) error {
	if len(f.backends) > 0 {
		kinds := make([]smbios.BackendKind, 0, len(f.backends))

		for _, name := range f.backends {
			k, err := smbios.ParseBackendKind(name)
			if err != nil {
				return err
			}

			kinds = append(kinds, k)
		}

		o.Backends = kinds
	}

	if f.logLevel != "" {
		l, err := stlog.ParseLevel(f.logLevel)
		if err != nil {
			return err
		}

		o.LogLevel = l
	}

	if f.kernelLog != nil {
		o.KernelLog = *f.kernelLog
	}

	if f.format != "" {
		format, err := opts.ParseFormat(f.format)
		if err != nil {
			return err
		}

		o.Format = format
	}

	return nil
}

// optionalBool is a boolean flag value that tells an unset flag from an
// explicit --no-flag.
type optionalBool struct {
	value *bool
}

// Set implements kingpin.Value.
func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}

	b.value = &v

	return nil
}

func (b *optionalBool) String() string {
	if b.value == nil {
		return ""
	}

	return strconv.FormatBool(*b.value)
}

// IsBoolFlag makes kingpin accept the flag without an argument and
// generate its --no- form.
func (b *optionalBool) IsBoolFlag() bool {
	return true
}
