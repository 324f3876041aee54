// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"encoding/binary"
	"errors"
	"io"
)

// encodeEntry32 builds a valid 32-bit entry point.
func encodeEntry32(addr uint32, length, count uint16) []byte {
	b := make([]byte, entry32Length)
	copy(b, anchor32)
	b[5] = entry32Length
	b[6] = 2
	b[7] = 8
	binary.LittleEndian.PutUint16(b[0x08:], 0x80)
	copy(b[0x10:], intermediateAnchor)
	binary.LittleEndian.PutUint16(b[0x16:], length)
	binary.LittleEndian.PutUint32(b[0x18:], addr)
	binary.LittleEndian.PutUint16(b[0x1C:], count)
	b[0x1E] = 0x28
	fixEntry32Checksums(b)

	return b
}

func fixEntry32Checksums(b []byte) {
	b[0x15] = 0
	b[0x15] = -checksum(b[0x10:entry32Length])
	b[4] = 0
	b[4] = -checksum(b[:b[5]])
}

// encodeEntry64 builds a valid 64-bit entry point.
func encodeEntry64(addr uint64, maxSize uint32) []byte {
	b := make([]byte, entry64Length)
	copy(b, anchor64)
	b[6] = entry64Length
	b[7] = 3
	b[8] = 2
	b[9] = 1
	b[0x0A] = 1
	binary.LittleEndian.PutUint32(b[0x0C:], maxSize)
	binary.LittleEndian.PutUint64(b[0x10:], addr)
	b[5] = -checksum(b)

	return b
}

// sparseMemory is a zero filled address space of a fixed size with some
// regions set to specific content.
type sparseMemory struct {
	size    int64
	regions []region
	off     int64
	closed  bool
}

type region struct {
	addr int64
	data []byte
}

func newSparseMemory(size int64) *sparseMemory {
	return &sparseMemory{size: size}
}

func (m *sparseMemory) set(addr int64, data []byte) *sparseMemory {
	m.regions = append(m.regions, region{addr: addr, data: data})

	return m
}

func (m *sparseMemory) Read(p []byte) (int, error) {
	if m.off >= m.size {
		return 0, io.EOF
	}

	n := int64(len(p))
	if rest := m.size - m.off; n > rest {
		n = rest
	}

	for i := int64(0); i < n; i++ {
		p[i] = 0
	}

	for _, r := range m.regions {
		start, end := r.addr, r.addr+int64(len(r.data))
		if start < m.off {
			start = m.off
		}

		if end > m.off+n {
			end = m.off + n
		}

		if start < end {
			copy(p[start-m.off:end-m.off], r.data[start-r.addr:end-r.addr])
		}
	}

	m.off += n

	return int(n), nil
}

func (m *sparseMemory) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += m.off
	case io.SeekEnd:
		offset += m.size
	default:
		return 0, errors.New("invalid whence")
	}

	if offset < 0 {
		return 0, errors.New("negative offset")
	}

	m.off = offset

	return offset, nil
}

func (m *sparseMemory) Close() error {
	m.closed = true

	return nil
}

var errDevice = errors.New("device error")

// brokenMemory fails every read.
type brokenMemory struct{}

func (brokenMemory) Read([]byte) (int, error)       { return 0, errDevice }
func (brokenMemory) Seek(int64, int) (int64, error) { return 0, nil }
func (brokenMemory) Close() error                   { return nil }
