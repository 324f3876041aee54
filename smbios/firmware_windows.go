// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package smbios

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// 'RSMB' in ASCII.
const firmwareTableProviderRSMB uint32 = 0x52534d42

//nolint:gochecknoglobals
var (
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemFirmwareTable = modkernel32.NewProc("GetSystemFirmwareTable")
)

func firmwareTableProvider() firmwareTableQuery {
	if err := procGetSystemFirmwareTable.Find(); err != nil {
		return nil
	}

	return getSystemFirmwareTable
}

func getSystemFirmwareTable() ([]byte, error) {
	// A call without buffer returns the required size.
	r1, _, err := procGetSystemFirmwareTable.Call(
		uintptr(firmwareTableProviderRSMB),
		0,
		0,
		0,
	)
	if r1 == 0 {
		return nil, fmt.Errorf("query firmware table size: %w", err)
	}

	size := uint32(r1)
	buf := make([]byte, size)

	r1, _, err = procGetSystemFirmwareTable.Call(
		uintptr(firmwareTableProviderRSMB),
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(size),
	)
	if uint32(r1) != size {
		return nil, fmt.Errorf("read firmware table: got %d of %d bytes: %w", uint32(r1), size, err)
	}

	return buf, nil
}
