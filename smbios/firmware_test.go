// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawSMBIOSData(length uint32, table []byte) []byte {
	b := []byte{0, 3, 4, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(b[4:], length)

	return append(b, table...)
}

func TestFirmwareTableBackend(t *testing.T) {
	table := []byte{0x7F, 0x04, 0x00, 0x00, 0x00, 0x00}
	buf := rawSMBIOSData(uint32(len(table)), table)

	b := &FirmwareTableBackend{query: func() ([]byte, error) { return buf, nil }}
	require.True(t, b.Available())
	assert.Equal(t, BackendService, b.Kind())

	res, err := b.Acquire()
	require.NoError(t, err)
	assert.Equal(t, FirmwareTable, res.Entry.Kind())
	assert.Equal(t, table, res.Table)
	assert.Equal(t, buf[:rawSMBIOSHeaderLength], res.EntryBytes)

	addr, size := res.Entry.Table()
	assert.Equal(t, uint64(0), addr)
	assert.Equal(t, uint64(len(table)), size)

	major, minor, rev := res.Entry.Version()
	assert.Equal(t, []int{3, 4, 0}, []int{major, minor, rev})

	buf[rawSMBIOSHeaderLength] = 0xEE
	assert.Equal(t, byte(0x7F), res.Table[0], "table must be an owned copy")
}

func TestFirmwareTableBackendErrors(t *testing.T) {
	tests := []struct {
		name  string
		query firmwareTableQuery
		want  error
	}{
		{
			name:  "query fails",
			query: func() ([]byte, error) { return nil, errors.New("access denied") },
			want:  ErrServiceFailed,
		},
		{
			name:  "short header",
			query: func() ([]byte, error) { return []byte{0, 3, 4}, nil },
			want:  ErrInvalidEntryPoint,
		},
		{
			name:  "empty table",
			query: func() ([]byte, error) { return rawSMBIOSData(0, nil), nil },
			want:  ErrInvalidEntryPoint,
		},
		{
			name:  "truncated table",
			query: func() ([]byte, error) { return rawSMBIOSData(0x100, []byte{1, 2, 3}), nil },
			want:  ErrIO,
		},
		{
			name:  "no provider",
			query: nil,
			want:  ErrServiceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&FirmwareTableBackend{query: tt.query}).Acquire()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err)
		})
	}
}

func TestFirmwareTableBackendUnavailable(t *testing.T) {
	assert.False(t, (&FirmwareTableBackend{}).Available())
}
