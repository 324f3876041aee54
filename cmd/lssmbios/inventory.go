// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	dsmbios "github.com/digitalocean/go-smbios/smbios"
	"github.com/google/uuid"
)

// Structure types and field offsets as laid out in the SMBIOS reference
// specification. Offsets count from the start of the structure header.
const (
	typeSystem    = 1
	typeBaseboard = 2
	typeProcessor = 4

	systemManufacturer = 0x04
	systemProduct      = 0x05
	systemVersion      = 0x06
	systemSerial       = 0x07
	systemUUID         = 0x08
	systemSKU          = 0x19
	systemFamily       = 0x1A

	boardManufacturer = 0x04
	boardProduct      = 0x05
	boardVersion      = 0x06
	boardSerial       = 0x07
	boardAssetTag     = 0x08
	boardFeatures     = 0x09
	boardLocation     = 0x0A
	boardType         = 0x0D

	processorSocket       = 0x04
	processorType         = 0x05
	processorManufacturer = 0x07
	processorVersion      = 0x10
	processorSerial       = 0x20
	processorAssetTag     = 0x21
	processorPartNumber   = 0x22

	headerLength = 4
	uuidLength   = 16
)

type systemInfo struct {
	Manufacturer string `yaml:"manufacturer,omitempty"`
	Product      string `yaml:"product,omitempty"`
	Version      string `yaml:"version,omitempty"`
	Serial       string `yaml:"serial,omitempty"`
	SKU          string `yaml:"sku,omitempty"`
	UUID         string `yaml:"uuid,omitempty"`
	Family       string `yaml:"family,omitempty"`
}

type baseboardInfo struct {
	Manufacturer string   `yaml:"manufacturer,omitempty"`
	Product      string   `yaml:"product,omitempty"`
	Version      string   `yaml:"version,omitempty"`
	Serial       string   `yaml:"serial,omitempty"`
	AssetTag     string   `yaml:"asset_tag,omitempty"`
	Features     []string `yaml:"features,omitempty"`
	Location     string   `yaml:"location_in_chassis,omitempty"`
	BoardType    string   `yaml:"board_type,omitempty"`
}

type processorInfo struct {
	Socket        string `yaml:"socket,omitempty"`
	ProcessorType string `yaml:"processor_type,omitempty"`
	Manufacturer  string `yaml:"manufacturer,omitempty"`
	Version       string `yaml:"version,omitempty"`
	Serial        string `yaml:"serial,omitempty"`
	AssetTag      string `yaml:"asset_tag,omitempty"`
	PartNumber    string `yaml:"part_number,omitempty"`
}

// inventory holds the identifying fields of the system, baseboard and
// processor structures.
type inventory struct {
	Systems    []systemInfo    `yaml:"system,omitempty"`
	Baseboards []baseboardInfo `yaml:"baseboard,omitempty"`
	Processors []processorInfo `yaml:"processor,omitempty"`
}

//nolint:gochecknoglobals
var (
	boardTypes = map[uint8]string{
		0x01: "Unknown",
		0x02: "Other",
		0x03: "Server Blade",
		0x04: "Connectivity Switch",
		0x05: "System Management Module",
		0x06: "Processor Module",
		0x07: "I/O Module",
		0x08: "Memory Module",
		0x09: "Daughter board",
		0x0A: "Motherboard",
		0x0B: "Processor/Memory Module",
		0x0C: "Processor/IO Module",
		0x0D: "Interconnect board",
	}

	boardFeatureNames = []string{
		"hosting board",
		"requires daughter board",
		"removable",
		"replaceable",
		"hot swappable",
	}

	processorTypes = map[uint8]string{
		0x01: "Other",
		0x02: "Unknown",
		0x03: "Central Processor",
		0x04: "Math Processor",
		0x05: "DSP Processor",
		0x06: "Video Processor",
	}
)

func newInventory(ss []*dsmbios.Structure) inventory {
	var inv inventory

	for _, s := range ss {
		switch s.Header.Type {
		case typeSystem:
			inv.Systems = append(inv.Systems, newSystemInfo(s))
		case typeBaseboard:
			inv.Baseboards = append(inv.Baseboards, newBaseboardInfo(s))
		case typeProcessor:
			inv.Processors = append(inv.Processors, newProcessorInfo(s))
		}
	}

	return inv
}

func newSystemInfo(s *dsmbios.Structure) systemInfo {
	return systemInfo{
		Manufacturer: structureString(s, systemManufacturer),
		Product:      structureString(s, systemProduct),
		Version:      structureString(s, systemVersion),
		Serial:       structureString(s, systemSerial),
		SKU:          structureString(s, systemSKU),
		UUID:         systemUUIDString(s),
		Family:       structureString(s, systemFamily),
	}
}

func newBaseboardInfo(s *dsmbios.Structure) baseboardInfo {
	info := baseboardInfo{
		Manufacturer: structureString(s, boardManufacturer),
		Product:      structureString(s, boardProduct),
		Version:      structureString(s, boardVersion),
		Serial:       structureString(s, boardSerial),
		AssetTag:     structureString(s, boardAssetTag),
		Location:     structureString(s, boardLocation),
	}

	if flags, ok := structureByte(s, boardFeatures); ok {
		for bit, name := range boardFeatureNames {
			if flags&(1<<bit) != 0 {
				info.Features = append(info.Features, name)
			}
		}
	}

	if t, ok := structureByte(s, boardType); ok {
		info.BoardType = enumName(boardTypes, t)
	}

	return info
}

func newProcessorInfo(s *dsmbios.Structure) processorInfo {
	info := processorInfo{
		Socket:       structureString(s, processorSocket),
		Manufacturer: structureString(s, processorManufacturer),
		Version:      structureString(s, processorVersion),
		Serial:       structureString(s, processorSerial),
		AssetTag:     structureString(s, processorAssetTag),
		PartNumber:   structureString(s, processorPartNumber),
	}

	if t, ok := structureByte(s, processorType); ok {
		info.ProcessorType = enumName(processorTypes, t)
	}

	return info
}

// structureByte returns the byte at offset. The formatted area of a
// decoded structure starts behind the header.
func structureByte(s *dsmbios.Structure, offset int) (uint8, bool) {
	i := offset - headerLength
	if i < 0 || i >= len(s.Formatted) {
		return 0, false
	}

	return s.Formatted[i], true
}

// structureString resolves the string reference at offset. References
// are 1-based, 0 means no string.
func structureString(s *dsmbios.Structure, offset int) string {
	ref, ok := structureByte(s, offset)
	if !ok || ref == 0 || int(ref) > len(s.Strings) {
		return ""
	}

	return strings.TrimSpace(s.Strings[ref-1])
}

// systemUUIDString formats the system UUID. The first three fields are
// stored little-endian. All zero or all 0xFF bytes mean no UUID is set.
func systemUUIDString(s *dsmbios.Structure) string {
	i := systemUUID - headerLength
	if i < 0 || i+uuidLength > len(s.Formatted) {
		return ""
	}

	raw := s.Formatted[i : i+uuidLength]
	if bytes.Equal(raw, make([]byte, uuidLength)) || bytes.Equal(raw, bytes.Repeat([]byte{0xFF}, uuidLength)) {
		return ""
	}

	b := bytes.Clone(raw)
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5] = b[5], b[4]
	b[6], b[7] = b[7], b[6]

	id, err := uuid.FromBytes(b)
	if err != nil {
		return ""
	}

	return id.String()
}

func enumName(names map[uint8]string, v uint8) string {
	if name, ok := names[v]; ok {
		return name
	}

	return fmt.Sprintf("%#02x", v)
}

func (inv inventory) writeText(w io.Writer) error {
	for _, s := range inv.Systems {
		if err := writeSection(w, "SYSTEM", [][2]string{
			{"manufacturer", s.Manufacturer},
			{"product", s.Product},
			{"version", s.Version},
			{"serial", s.Serial},
			{"sku", s.SKU},
			{"uuid", s.UUID},
			{"family", s.Family},
		}); err != nil {
			return err
		}
	}

	for _, b := range inv.Baseboards {
		if err := writeSection(w, "BASEBOARD", [][2]string{
			{"manufacturer", b.Manufacturer},
			{"product", b.Product},
			{"version", b.Version},
			{"serial", b.Serial},
			{"asset_tag", b.AssetTag},
			{"features", strings.Join(b.Features, ", ")},
			{"location_in_chassis", b.Location},
			{"board_type", b.BoardType},
		}); err != nil {
			return err
		}
	}

	for _, p := range inv.Processors {
		if err := writeSection(w, "PROCESSOR", [][2]string{
			{"socket", p.Socket},
			{"processor_type", p.ProcessorType},
			{"manufacturer", p.Manufacturer},
			{"version", p.Version},
			{"serial", p.Serial},
			{"asset_tag", p.AssetTag},
			{"part_number", p.PartNumber},
		}); err != nil {
			return err
		}
	}

	return nil
}

// writeSection prints a titled block of fields. Empty fields are left out.
func writeSection(w io.Writer, title string, fields [][2]string) error {
	if _, err := fmt.Fprintf(w, "\n== %s ==\n", title); err != nil {
		return err
	}

	for _, f := range fields {
		if f[1] == "" {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s: %s\n", f[0], f[1]); err != nil {
			return err
		}
	}

	return nil
}
