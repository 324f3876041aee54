// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"fmt"
	"os"

	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

// sysfs locations of the firmware's SMBIOS export.
const (
	SysfsEntryPoint = "/sys/firmware/dmi/tables/smbios_entry_point"
	SysfsTable      = "/sys/firmware/dmi/tables/DMI"
)

// ExportBackend reads an entry point and a table the operating system has
// already located and exported as two separate files.
type ExportBackend struct {
	EntryPointPath string
	TablePath      string
}

// NewExportBackend returns an ExportBackend reading from sysfs.
func NewExportBackend() *ExportBackend {
	return &ExportBackend{
		EntryPointPath: SysfsEntryPoint,
		TablePath:      SysfsTable,
	}
}

// Kind implements Backend.
func (b *ExportBackend) Kind() BackendKind {
	return BackendExport
}

// Available implements Backend.
func (b *ExportBackend) Available() bool {
	return exists(b.EntryPointPath) && exists(b.TablePath)
}

// Acquire implements Backend.
func (b *ExportBackend) Acquire() (*Result, error) {
	const operation = sterror.Op("acquire export")

	f, err := os.Open(b.EntryPointPath)
	if err != nil {
		return nil, sterror.E(sterror.Export, operation, ErrIO, err)
	}
	defer f.Close()

	ep, raw, err := ReadEntryPoint(f)
	if err != nil {
		return nil, sterror.E(sterror.Export, operation, err, b.EntryPointPath)
	}

	table, err := os.ReadFile(b.TablePath)
	if err != nil {
		return nil, sterror.E(sterror.Export, operation, ErrIO, err)
	}

	if len(table) == 0 {
		return nil, sterror.E(sterror.Export, operation, ErrIO, fmt.Sprintf("%s is empty", b.TablePath))
	}

	if _, size := ep.Table(); ep.Kind() == Bits32 && size != uint64(len(table)) {
		stlog.Debug("%s holds %d bytes, entry point declares %d", b.TablePath, len(table), size)
	}

	return &Result{
		Backend:    BackendExport,
		Entry:      ep,
		EntryBytes: raw,
		Table:      table,
	}, nil
}
