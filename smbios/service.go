// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bytes"
	"fmt"

	"system-transparency.org/stsmbios/sterror"
)

// Names used to query the SMBIOS service of macOS' I/O registry.
const (
	AppleSMBIOSService = "AppleSMBIOS"
	EntryPointProperty = "SMBIOS-EPS"
	TableProperty      = "SMBIOS"
)

// PropertySource hands out named byte properties of a connected
// hardware-management service. Buffers returned by Property may be
// invalidated by Close.
type PropertySource interface {
	Property(name string) ([]byte, error)
	Close() error
}

// ServiceConnector connects to a hardware-management service.
type ServiceConnector interface {
	// Available reports whether the service interface exists on this host.
	Available() bool
	// Connect looks up the service with the given identifier.
	Connect(service string) (PropertySource, error)
}

// ServiceBackend fetches the entry point and the table as two properties
// of a platform service.
type ServiceBackend struct {
	Service            string
	EntryPointProperty string
	TableProperty      string
	Connector          ServiceConnector
}

// NewServiceBackend returns a ServiceBackend querying the AppleSMBIOS
// service through ioreg.
func NewServiceBackend() *ServiceBackend {
	return &ServiceBackend{
		Service:            AppleSMBIOSService,
		EntryPointProperty: EntryPointProperty,
		TableProperty:      TableProperty,
		Connector:          NewIORegConnector(),
	}
}

// Kind implements Backend.
func (b *ServiceBackend) Kind() BackendKind {
	return BackendService
}

// Available implements Backend.
func (b *ServiceBackend) Available() bool {
	return b.Connector != nil && b.Connector.Available()
}

// Acquire implements Backend.
func (b *ServiceBackend) Acquire() (*Result, error) {
	const operation = sterror.Op("acquire service")

	if b.Connector == nil {
		return nil, sterror.E(sterror.Service, operation, ErrServiceFailed, "no connector")
	}

	src, err := b.Connector.Connect(b.Service)
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, ErrServiceFailed, err,
			fmt.Sprintf("service %q unreachable", b.Service))
	}
	defer src.Close()

	eps, err := property(src, b.EntryPointProperty)
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, err)
	}

	table, err := property(src, b.TableProperty)
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, err)
	}

	ep, raw, err := ReadEntryPoint(bytes.NewReader(eps))
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, err)
	}

	return &Result{
		Backend:    BackendService,
		Entry:      ep,
		EntryBytes: raw,
		Table:      table,
	}, nil
}

// property returns an owned copy of the named property.
func property(src PropertySource, name string) ([]byte, error) {
	buf, err := src.Property(name)
	if err != nil {
		return nil, sterror.E(ErrServiceFailed, err, fmt.Sprintf("property %q", name))
	}

	if len(buf) == 0 {
		return nil, sterror.E(ErrServiceFailed, fmt.Sprintf("property %q is empty", name))
	}

	return bytes.Clone(buf), nil
}
