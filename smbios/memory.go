// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

// DevMem is the physical memory device.
const DevMem = "/dev/mem"

// MemoryBackend scans physical memory for the entry point and reads the
// table at the address it declares.
type MemoryBackend struct {
	Path   string
	Window ScanWindow
	// Open opens Path. It defaults to os.Open.
	Open func(path string) (io.ReadSeekCloser, error)
}

// NewMemoryBackend returns a MemoryBackend scanning the legacy window
// of /dev/mem.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		Path:   DevMem,
		Window: LegacyWindow,
	}
}

func openFile(path string) (io.ReadSeekCloser, error) {
	return os.Open(path)
}

// Kind implements Backend.
func (b *MemoryBackend) Kind() BackendKind {
	return BackendMemory
}

// Available implements Backend.
func (b *MemoryBackend) Available() bool {
	return exists(b.Path)
}

// Acquire implements Backend.
func (b *MemoryBackend) Acquire() (*Result, error) {
	const operation = sterror.Op("acquire memory")

	open := b.Open
	if open == nil {
		open = openFile
	}

	mem, err := open(b.Path)
	if err != nil {
		return nil, sterror.E(sterror.Memory, operation, ErrIO, err)
	}
	defer mem.Close()

	addr, err := FindAnchor(mem, b.Window.Start, b.Window.End)
	if err != nil {
		return nil, sterror.E(sterror.Memory, operation, err)
	}

	stlog.Debug("found entry point anchor at %#x", addr)

	if err := seekTo(mem, addr); err != nil {
		return nil, sterror.E(sterror.Memory, operation, ErrIO, err)
	}

	ep, raw, err := ReadEntryPoint(mem)
	if err != nil {
		return nil, sterror.E(sterror.Memory, operation, err, fmt.Sprintf("entry point at %#x", addr))
	}

	table, err := readWindow(mem, ep)
	if err != nil {
		return nil, sterror.E(sterror.Memory, operation, err)
	}

	return &Result{
		Backend:    BackendMemory,
		Entry:      ep,
		EntryBytes: raw,
		Table:      table,
	}, nil
}

const (
	// tableChunk is the read size for tables bounded by a maximum size.
	tableChunk = 4096
	// maxTableSize bounds the bytes read from a table without an
	// end-of-table structure.
	maxTableSize = 16 << 20

	structureHeaderLength = 4
	endOfTableType        = 127
)

// readWindow reads the table the entry point declares. A 32-bit table is
// read exactly. A 64-bit entry point only declares a maximum size, so its
// table is read in chunks up to the end-of-table structure.
func readWindow(rs io.ReadSeeker, ep EntryPoint) ([]byte, error) {
	addr, size := ep.Table()

	if size == 0 || addr > math.MaxInt64-size {
		return nil, sterror.E(ErrInvalidEntryPoint,
			fmt.Sprintf("table window %#x+%#x out of range", addr, size))
	}

	if err := seekTo(rs, addr); err != nil {
		return nil, sterror.E(ErrIO, err)
	}

	if ep.Kind() == Bits64 {
		return readStructures(rs, addr, size)
	}

	table := make([]byte, size)
	if n, err := io.ReadFull(rs, table); err != nil {
		return nil, sterror.E(ErrIO, err,
			fmt.Sprintf("read table at %#x: got %d of %d bytes", addr, n, size))
	}

	return table, nil
}

// readStructures reads at most size bytes from r and returns the table
// up to and including the end-of-table structure. Without such a
// structure the whole size is returned, unless it exceeds maxTableSize.
func readStructures(r io.Reader, addr, size uint64) ([]byte, error) {
	limit := min(size, maxTableSize)

	var (
		table []byte
		next  int
	)

	for uint64(len(table)) < limit {
		start := len(table)
		table = append(table, make([]byte, min(limit-uint64(start), tableChunk))...)

		n, err := io.ReadFull(r, table[start:])
		table = table[:start+n]

		end, done := walkStructures(table, next)
		if done {
			stlog.Debug("end-of-table structure at %#x, %d of at most %d bytes", addr+uint64(end), end, size)

			return table[:end], nil
		}

		if err != nil {
			return nil, sterror.E(ErrIO, err,
				fmt.Sprintf("read table at %#x: got %d of at most %d bytes", addr, len(table), size))
		}

		next = end
	}

	if size > maxTableSize {
		return nil, sterror.E(ErrInvalidEntryPoint,
			fmt.Sprintf("no end-of-table structure within %d bytes at %#x", maxTableSize, addr))
	}

	return table, nil
}

// walkStructures steps over the complete structures in b beginning at
// off. It returns the offset behind the last complete structure and
// whether that structure ends the table.
func walkStructures(b []byte, off int) (int, bool) {
	for off+structureHeaderLength <= len(b) {
		typ, length := b[off], int(b[off+1])
		if length < structureHeaderLength || off+length > len(b) {
			return off, false
		}

		// The string-set ends with two NUL bytes, an empty set is
		// just the two NUL bytes.
		i := bytes.Index(b[off+length:], []byte{0, 0})
		if i < 0 {
			return off, false
		}

		off += length + i + 2

		if typ == endOfTableType {
			return off, true
		}
	}

	return off, false
}
