// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	dsmbios "github.com/digitalocean/go-smbios/smbios"
	"gopkg.in/yaml.v3"
	"system-transparency.org/stsmbios/smbios"
)

type summary struct {
	Backend        string             `yaml:"backend"`
	EntryPoint     string             `yaml:"entry_point"`
	Version        string             `yaml:"version"`
	TableAddress   uint64             `yaml:"table_address"`
	TableSize      uint64             `yaml:"table_size"`
	AcquiredLength int                `yaml:"acquired_bytes"`
	DeclaredCount  *int               `yaml:"declared_structures,omitempty"`
	Inventory      inventory          `yaml:"inventory"`
	Structures     []structureSummary `yaml:"structures"`
}

type structureSummary struct {
	Type    uint8  `yaml:"type"`
	Handle  uint16 `yaml:"handle"`
	Length  uint8  `yaml:"length"`
	Strings int    `yaml:"strings"`
}

func newSummary(res *smbios.Result, ss []*dsmbios.Structure) *summary {
	major, minor, rev := res.Entry.Version()
	addr, size := res.Entry.Table()

	sum := &summary{
		Backend:        res.Backend.String(),
		EntryPoint:     res.Entry.Kind().String(),
		Version:        fmt.Sprintf("%d.%d.%d", major, minor, rev),
		TableAddress:   addr,
		TableSize:      size,
		AcquiredLength: len(res.Table),
		Inventory:      newInventory(ss),
		Structures:     make([]structureSummary, 0, len(ss)),
	}

	if e, ok := res.Entry.(*smbios.Entry32); ok {
		n := int(e.StructureCount)
		sum.DeclaredCount = &n
	}

	for _, s := range ss {
		sum.Structures = append(sum.Structures, structureSummary{
			Type:    s.Header.Type,
			Handle:  s.Header.Handle,
			Length:  s.Header.Length,
			Strings: len(s.Strings),
		})
	}

	return sum
}

func (s *summary) writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "SMBIOS %s - %s entry point from %s backend\n",
		s.Version, s.EntryPoint, s.Backend); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "table: address: %#x, size: %d, acquired: %d bytes\n",
		s.TableAddress, s.TableSize, s.AcquiredLength); err != nil {
		return err
	}

	for _, st := range s.Structures {
		if _, err := fmt.Fprintf(w, "handle %#04x: type %3d, length %3d, %d strings\n",
			st.Handle, st.Type, st.Length, st.Strings); err != nil {
			return err
		}
	}

	return s.Inventory.writeText(w)
}

func (s *summary) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(s); err != nil {
		return err
	}

	return enc.Close()
}
