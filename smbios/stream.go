// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"sort"

	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

// Selector picks the first available backend in priority order and
// acquires the SMBIOS data from it.
type Selector struct {
	backends []Backend
}

// NewSelector returns a Selector over the given backends. The backends
// are ordered by the priority of their kind, backends of the same kind
// keep the order they were passed in.
func NewSelector(backends ...Backend) *Selector {
	sorted := make([]Backend, 0, len(backends))

	for _, b := range backends {
		if b != nil {
			sorted = append(sorted, b)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind() < sorted[j].Kind()
	})

	return &Selector{backends: sorted}
}

// Backends returns the backends of s in the order they are probed.
func (s *Selector) Backends() []Backend {
	return append([]Backend(nil), s.backends...)
}

// Stream acquires the SMBIOS entry point and table from the first
// available backend. A failing acquisition is returned as is, no other
// backend is tried afterwards. If no backend is available the returned
// error matches ErrEntryPointNotFound.
func (s *Selector) Stream() (*Result, error) {
	const operation = sterror.Op("stream")

	for _, b := range s.backends {
		if !b.Available() {
			stlog.Debug("%s backend not available", b.Kind())

			continue
		}

		stlog.Debug("acquiring SMBIOS data from %s backend", b.Kind())

		res, err := b.Acquire()
		if err != nil {
			return nil, sterror.E(sterror.Selector, operation, err, b.Kind().String()+" backend")
		}

		return res, nil
	}

	return nil, sterror.E(sterror.Selector, operation, ErrEntryPointNotFound, "no SMBIOS source available")
}

// DefaultBackends returns a backend of every kind set up with the
// locations of the running host.
func DefaultBackends() []Backend {
	return []Backend{
		NewExportBackend(),
		NewMemoryBackend(),
		NewServiceBackend(),
		NewFirmwareTableBackend(),
	}
}

// BackendsOf returns the default backends of the given kinds.
func BackendsOf(kinds ...BackendKind) []Backend {
	enabled := make(map[BackendKind]bool, len(kinds))
	for _, k := range kinds {
		enabled[k] = true
	}

	var backends []Backend

	for _, b := range DefaultBackends() {
		if enabled[b.Kind()] {
			backends = append(backends, b)
		}
	}

	return backends
}

// Stream locates the SMBIOS entry point and table on the running host
// using the default backends.
func Stream() (*Result, error) {
	return NewSelector(DefaultBackends()...).Stream()
}
