// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

// BackendKind identifies an acquisition strategy. The numeric order is
// the selection priority, lower values are tried first.
type BackendKind int

const (
	BackendExport BackendKind = iota + 1
	BackendMemory
	BackendService
)

// AllBackendKinds lists every BackendKind in priority order.
//
//nolint:gochecknoglobals
var AllBackendKinds = []BackendKind{BackendExport, BackendMemory, BackendService}

// ErrUnknownBackend is returned when parsing an unknown backend name.
const ErrUnknownBackend = sterror.Kind("unknown backend")

// String implements fmt.Stringer.
func (k BackendKind) String() string {
	switch k {
	case BackendExport:
		return "export"
	case BackendMemory:
		return "memory"
	case BackendService:
		return "service"
	default:
		return "unknown"
	}
}

// ParseBackendKind returns the BackendKind named by s.
func ParseBackendKind(s string) (BackendKind, error) {
	for _, k := range AllBackendKinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}

	return 0, sterror.E(sterror.Selector, sterror.Op("parse backend"), ErrUnknownBackend, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k BackendKind) MarshalText() ([]byte, error) {
	if k < BackendExport || k > BackendService {
		return nil, sterror.E(sterror.Selector, sterror.Op("marshal backend"), ErrUnknownBackend)
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BackendKind) UnmarshalText(text []byte) error {
	v, err := ParseBackendKind(string(text))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// Backend acquires the entry point and the structure table from one kind
// of source.
type Backend interface {
	// Kind returns the kind of the backend.
	Kind() BackendKind
	// Available is a cheap check whether the source is present on this
	// host. It does not attempt an acquisition.
	Available() bool
	// Acquire reads the entry point and the table. Every resource opened
	// is released before Acquire returns.
	Acquire() (*Result, error)
}

// Result is the outcome of a successful acquisition. It is owned by the
// caller, no backend keeps a reference to it.
type Result struct {
	// Backend is the kind of backend that produced the result.
	Backend BackendKind
	// Entry is the parsed entry point.
	Entry EntryPoint
	// EntryBytes holds the raw entry point header.
	EntryBytes []byte
	// Table holds the raw structure table.
	Table []byte
}

// Reader returns a reader over the structure table suitable for a
// structure decoder.
func (r *Result) Reader() io.Reader {
	return bytes.NewReader(r.Table)
}

// exists reports whether path is present. Errors other than non-existence
// count as present, so that acquiring from the path surfaces them.
func exists(path string) bool {
	_, err := os.Stat(path)

	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		return false
	default:
		stlog.Debug("stat %s: %v", path, err)

		return true
	}
}
