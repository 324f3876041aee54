// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"system-transparency.org/stsmbios/sterror"
)

// rawSMBIOSHeaderLength is the size of the RawSMBIOSData header preceding
// the table in a firmware table query.
const rawSMBIOSHeaderLength = 8

// FirmwareEntryPoint describes a table returned by a firmware table query.
// No raw entry point is exposed that way, so the table address is always
// 0, the offset of the table in the returned data.
type FirmwareEntryPoint struct {
	Used20CallingMethod uint8
	Major               uint8
	Minor               uint8
	DMIRevision         uint8
	Length              uint32
}

// Version implements EntryPoint.
func (e *FirmwareEntryPoint) Version() (major, minor, revision int) {
	return int(e.Major), int(e.Minor), int(e.DMIRevision)
}

// Table implements EntryPoint.
func (e *FirmwareEntryPoint) Table() (address, size uint64) {
	return 0, uint64(e.Length)
}

// Kind implements EntryPoint.
func (e *FirmwareEntryPoint) Kind() EntryPointKind {
	return FirmwareTable
}

type firmwareTableQuery func() ([]byte, error)

// FirmwareTableBackend queries the firmware table provider of the
// operating system. It is only available on Windows.
type FirmwareTableBackend struct {
	query firmwareTableQuery
}

// NewFirmwareTableBackend returns a FirmwareTableBackend using the
// provider of the running host, if any.
func NewFirmwareTableBackend() *FirmwareTableBackend {
	return &FirmwareTableBackend{query: firmwareTableProvider()}
}

// Kind implements Backend.
func (b *FirmwareTableBackend) Kind() BackendKind {
	return BackendService
}

// Available implements Backend.
func (b *FirmwareTableBackend) Available() bool {
	return b.query != nil
}

// Acquire implements Backend.
func (b *FirmwareTableBackend) Acquire() (*Result, error) {
	const operation = sterror.Op("acquire firmware table")

	if b.query == nil {
		return nil, sterror.E(sterror.Firmware, operation, ErrServiceFailed, "no firmware table provider")
	}

	buf, err := b.query()
	if err != nil {
		return nil, sterror.E(sterror.Firmware, operation, ErrServiceFailed, err)
	}

	ep, table, err := parseRawSMBIOSData(buf)
	if err != nil {
		return nil, sterror.E(sterror.Firmware, operation, err)
	}

	return &Result{
		Backend:    BackendService,
		Entry:      ep,
		EntryBytes: bytes.Clone(buf[:rawSMBIOSHeaderLength]),
		Table:      table,
	}, nil
}

// parseRawSMBIOSData splits a RawSMBIOSData structure
//
//	BYTE  Used20CallingMethod
//	BYTE  SMBIOSMajorVersion
//	BYTE  SMBIOSMinorVersion
//	BYTE  DmiRevision
//	DWORD Length
//	BYTE  SMBIOSTableData[]
//
// into its header and an owned copy of the table.
func parseRawSMBIOSData(buf []byte) (*FirmwareEntryPoint, []byte, error) {
	if len(buf) < rawSMBIOSHeaderLength {
		return nil, nil, sterror.E(ErrInvalidEntryPoint, fmt.Sprintf("firmware table header truncated: %d bytes", len(buf)))
	}

	ep := &FirmwareEntryPoint{
		Used20CallingMethod: buf[0],
		Major:               buf[1],
		Minor:               buf[2],
		DMIRevision:         buf[3],
		Length:              binary.LittleEndian.Uint32(buf[4:8]),
	}

	if ep.Length == 0 {
		return nil, nil, sterror.E(ErrInvalidEntryPoint, errEmptyTable)
	}

	data := buf[rawSMBIOSHeaderLength:]
	if uint64(len(data)) < uint64(ep.Length) {
		return nil, nil, sterror.E(ErrIO, fmt.Sprintf("firmware table truncated: got %d of %d bytes", len(data), ep.Length))
	}

	return ep, bytes.Clone(data[:ep.Length]), nil
}
