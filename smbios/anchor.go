// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"fmt"
	"io"
	"math"

	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

const (
	anchor32           = "_SM_"
	anchor64           = "_SM3_"
	intermediateAnchor = "_DMI_"

	// Anchors are paragraph aligned.
	anchorAlign = 16
	// probeLength covers the anchor and the length byte of both
	// entry point styles.
	probeLength = 8
	// maxEntryPointLength bounds the declared length of any candidate.
	maxEntryPointLength = 0x20
)

// ScanWindow is a byte range [Start, End) probed for an anchor.
type ScanWindow struct {
	Start uint64
	End   uint64
}

// LegacyWindow is the physical memory range BIOSes place the entry point in.
//
//nolint:gochecknoglobals
var LegacyWindow = ScanWindow{Start: 0xF0000, End: 0x100000}

// Len returns the size of w in bytes.
func (w ScanWindow) Len() uint64 {
	if w.End < w.Start {
		return 0
	}

	return w.End - w.Start
}

// String implements fmt.Stringer.
func (w ScanWindow) String() string {
	return fmt.Sprintf("[%#x, %#x)", w.Start, w.End)
}

// FindAnchor scans rs from start to end on 16-byte boundaries and returns
// the address of the first entry point anchor whose checksum is valid.
// Candidates with a matching signature but a bad checksum are skipped.
// An unaligned start is rounded up to the next boundary. Only candidates
// whose probe bytes lie within [start, end) are read, the header itself
// may extend past end.
func FindAnchor(rs io.ReadSeeker, start, end uint64) (uint64, error) {
	const operation = sterror.Op("find anchor")

	w := ScanWindow{Start: alignUp(start), End: end}
	probe := make([]byte, probeLength)
	header := make([]byte, maxEntryPointLength)

	for addr := w.Start; addr >= w.Start && fitsProbe(w, addr); addr += anchorAlign {
		if err := seekTo(rs, addr); err != nil {
			return 0, sterror.E(sterror.Anchor, operation, ErrIO, err)
		}

		if _, err := io.ReadFull(rs, probe); err != nil {
			return 0, sterror.E(sterror.Anchor, operation, ErrIO, err,
				fmt.Sprintf("read candidate at %#x", addr))
		}

		declared, ok := declaredLength(probe)
		if !ok {
			continue
		}

		if declared < probeLength || declared > maxEntryPointLength {
			stlog.Debug("anchor candidate at %#x: implausible length %#x", addr, declared)

			continue
		}

		if err := seekTo(rs, addr); err != nil {
			return 0, sterror.E(sterror.Anchor, operation, ErrIO, err)
		}

		if _, err := io.ReadFull(rs, header[:declared]); err != nil {
			return 0, sterror.E(sterror.Anchor, operation, ErrIO, err,
				fmt.Sprintf("read header at %#x", addr))
		}

		if sum := checksum(header[:declared]); sum != 0 {
			stlog.Debug("anchor candidate at %#x: checksum %#02x, skipping", addr, sum)

			continue
		}

		return addr, nil
	}

	return 0, sterror.E(sterror.Anchor, operation, ErrEntryPointNotFound,
		fmt.Sprintf("no valid anchor in %s", w))
}

// declaredLength reports whether probe starts with an anchor and, if so,
// the header length the anchor declares.
func declaredLength(probe []byte) (int, bool) {
	switch {
	case string(probe[:len(anchor64)]) == anchor64:
		return int(probe[6]), true
	case string(probe[:len(anchor32)]) == anchor32:
		return int(probe[5]), true
	default:
		return 0, false
	}
}

// checksum returns the sum of all bytes in b modulo 256.
func checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}

	return sum
}

// fitsProbe reports whether the probe bytes at addr lie within w.
func fitsProbe(w ScanWindow, addr uint64) bool {
	return w.End >= probeLength && addr <= w.End-probeLength
}

func alignUp(addr uint64) uint64 {
	if rem := addr % anchorAlign; rem != 0 {
		return addr + anchorAlign - rem
	}

	return addr
}

func seekTo(s io.Seeker, addr uint64) error {
	if addr > math.MaxInt64 {
		return fmt.Errorf("address %#x exceeds seekable range", addr)
	}

	_, err := s.Seek(int64(addr), io.SeekStart)

	return err
}
