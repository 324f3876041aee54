// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"system-transparency.org/stsmbios/sterror"
)

const (
	entry32Length = 0x1F
	entry64Length = 0x18

	// The intermediate (DMI) part of a 32-bit entry point.
	intermediateOffset = 0x10
)

var errEmptyTable = errors.New("empty structure table")

// EntryPointKind tells the variants of EntryPoint apart.
type EntryPointKind int

const (
	Bits32 EntryPointKind = iota + 1
	Bits64
	FirmwareTable
)

// String implements fmt.Stringer.
func (k EntryPointKind) String() string {
	switch k {
	case Bits32:
		return "32-bit"
	case Bits64:
		return "64-bit"
	case FirmwareTable:
		return "firmware table"
	default:
		return "unknown"
	}
}

// EntryPoint describes where the SMBIOS structure table is located and
// how large it is. It is implemented by *Entry32, *Entry64 and
// *FirmwareEntryPoint.
type EntryPoint interface {
	// Version returns the SMBIOS version the table conforms to.
	Version() (major, minor, revision int)
	// Table returns the address and the size in bytes of the structure
	// table. The address unit depends on the backend that produced the
	// entry point.
	Table() (address, size uint64)
	// Kind returns the variant of the entry point.
	Kind() EntryPointKind
}

// Entry32 is the legacy 32-bit entry point (anchor "_SM_").
type Entry32 struct {
	Checksum             uint8
	Length               uint8
	Major                uint8
	Minor                uint8
	MaxStructureSize     uint16
	EntryPointRevision   uint8
	FormattedArea        [5]byte
	IntermediateAnchor   [5]byte
	IntermediateChecksum uint8
	TableLength          uint16
	TableAddress         uint32
	StructureCount       uint16
	BCDRevision          uint8
}

// Version implements EntryPoint. The 32-bit entry point carries no
// revision, it is always 0.
func (e *Entry32) Version() (major, minor, revision int) {
	return int(e.Major), int(e.Minor), 0
}

// Table implements EntryPoint.
func (e *Entry32) Table() (address, size uint64) {
	return uint64(e.TableAddress), uint64(e.TableLength)
}

// Kind implements EntryPoint.
func (e *Entry32) Kind() EntryPointKind {
	return Bits32
}

// Entry64 is the SMBIOS 3.0 64-bit entry point (anchor "_SM3_").
type Entry64 struct {
	Checksum           uint8
	Length             uint8
	Major              uint8
	Minor              uint8
	Revision           uint8
	EntryPointRevision uint8
	Reserved           uint8
	TableMaxSize       uint32
	TableAddress       uint64
}

// Version implements EntryPoint.
func (e *Entry64) Version() (major, minor, revision int) {
	return int(e.Major), int(e.Minor), int(e.Revision)
}

// Table implements EntryPoint. The size is the maximum size of the
// table, the actual table may be shorter.
func (e *Entry64) Table() (address, size uint64) {
	return e.TableAddress, uint64(e.TableMaxSize)
}

// Kind implements EntryPoint.
func (e *Entry64) Kind() EntryPointKind {
	return Bits64
}

// ParseEntryPoint parses the entry point starting at offset 0 of b.
// Bytes beyond the declared header length are ignored.
func ParseEntryPoint(b []byte) (EntryPoint, error) {
	const operation = sterror.Op("parse entry point")

	var (
		ep  EntryPoint
		err error
	)

	switch {
	case bytes.HasPrefix(b, []byte(anchor64)):
		ep, err = parseEntry64(b)
	case bytes.HasPrefix(b, []byte(anchor32)):
		ep, err = parseEntry32(b)
	default:
		return nil, sterror.E(sterror.EntryPoint, operation, ErrInvalidEntryPoint, "unknown anchor")
	}

	if err != nil {
		return nil, sterror.E(sterror.EntryPoint, operation, ErrInvalidEntryPoint, err)
	}

	return ep, nil
}

// ReadEntryPoint reads and parses an entry point from r. It returns the
// parsed entry point together with the raw header bytes.
func ReadEntryPoint(r io.Reader) (EntryPoint, []byte, error) {
	const operation = sterror.Op("read entry point")

	b, err := io.ReadAll(io.LimitReader(r, maxEntryPointLength))
	if err != nil {
		return nil, nil, sterror.E(sterror.EntryPoint, operation, ErrIO, err)
	}

	ep, err := ParseEntryPoint(b)
	if err != nil {
		return nil, nil, err
	}

	return ep, b[:headerLength(ep)], nil
}

func headerLength(ep EntryPoint) int {
	switch e := ep.(type) {
	case *Entry32:
		return int(e.Length)
	case *Entry64:
		return int(e.Length)
	default:
		return rawSMBIOSHeaderLength
	}
}

func parseEntry32(b []byte) (*Entry32, error) {
	if len(b) < entry32Length {
		return nil, fmt.Errorf("32-bit header truncated: %d bytes", len(b))
	}

	if l := b[5]; l != entry32Length {
		return nil, fmt.Errorf("32-bit header length %#x, want %#x", l, entry32Length)
	}

	if sum := checksum(b[:entry32Length]); sum != 0 {
		return nil, fmt.Errorf("32-bit header checksum %#02x", sum)
	}

	if string(b[intermediateOffset:intermediateOffset+len(intermediateAnchor)]) != intermediateAnchor {
		return nil, fmt.Errorf("missing intermediate anchor %q", intermediateAnchor)
	}

	if sum := checksum(b[intermediateOffset:entry32Length]); sum != 0 {
		return nil, fmt.Errorf("intermediate checksum %#02x", sum)
	}

	e := &Entry32{
		Checksum:             b[4],
		Length:               b[5],
		Major:                b[6],
		Minor:                b[7],
		MaxStructureSize:     binary.LittleEndian.Uint16(b[0x08:0x0A]),
		EntryPointRevision:   b[0x0A],
		IntermediateChecksum: b[0x15],
		TableLength:          binary.LittleEndian.Uint16(b[0x16:0x18]),
		TableAddress:         binary.LittleEndian.Uint32(b[0x18:0x1C]),
		StructureCount:       binary.LittleEndian.Uint16(b[0x1C:0x1E]),
		BCDRevision:          b[0x1E],
	}
	copy(e.FormattedArea[:], b[0x0B:0x10])
	copy(e.IntermediateAnchor[:], b[0x10:0x15])

	if e.TableLength == 0 {
		return nil, errEmptyTable
	}

	return e, nil
}

func parseEntry64(b []byte) (*Entry64, error) {
	if len(b) < entry64Length {
		return nil, fmt.Errorf("64-bit header truncated: %d bytes", len(b))
	}

	if l := b[6]; l != entry64Length {
		return nil, fmt.Errorf("64-bit header length %#x, want %#x", l, entry64Length)
	}

	if sum := checksum(b[:entry64Length]); sum != 0 {
		return nil, fmt.Errorf("64-bit header checksum %#02x", sum)
	}

	e := &Entry64{
		Checksum:           b[5],
		Length:             b[6],
		Major:              b[7],
		Minor:              b[8],
		Revision:           b[9],
		EntryPointRevision: b[0x0A],
		Reserved:           b[0x0B],
		TableMaxSize:       binary.LittleEndian.Uint32(b[0x0C:0x10]),
		TableAddress:       binary.LittleEndian.Uint64(b[0x10:0x18]),
	}

	if e.TableMaxSize == 0 {
		return nil, errEmptyTable
	}

	return e, nil
}
