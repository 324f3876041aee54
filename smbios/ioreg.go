// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os/exec"
	"strings"

	"system-transparency.org/stsmbios/sterror"
)

// maxIORegLine bounds a single line of ioreg output. The table property
// is printed on one line.
const maxIORegLine = 16 << 20

// IORegConnector reads service properties from the output of macOS'
// ioreg tool.
type IORegConnector struct {
	Command string
}

// NewIORegConnector returns an IORegConnector using ioreg from PATH.
func NewIORegConnector() *IORegConnector {
	return &IORegConnector{Command: "ioreg"}
}

// Available implements ServiceConnector.
func (c *IORegConnector) Available() bool {
	_, err := exec.LookPath(c.Command)

	return err == nil
}

// Connect implements ServiceConnector.
func (c *IORegConnector) Connect(service string) (PropertySource, error) {
	const operation = sterror.Op("ioreg")

	out, err := exec.Command(c.Command, "-rd1", "-c", service).Output()
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, err)
	}

	props, err := parseIORegProperties(out)
	if err != nil {
		return nil, sterror.E(sterror.Service, operation, err)
	}

	if len(props) == 0 {
		return nil, sterror.E(sterror.Service, operation, fmt.Sprintf("no data properties for %q", service))
	}

	return &ioregProperties{props: props}, nil
}

type ioregProperties struct {
	props map[string][]byte
}

func (p *ioregProperties) Property(name string) ([]byte, error) {
	v, ok := p.props[name]
	if !ok {
		return nil, sterror.E(sterror.Service, sterror.Op("property"), fmt.Sprintf("%q not present", name))
	}

	return v, nil
}

func (p *ioregProperties) Close() error {
	p.props = nil

	return nil
}

// parseIORegProperties collects the data properties of ioreg output,
// lines of the form
//
//	"SMBIOS-EPS" = <5f534d5f...>
//
// Properties of other types are skipped.
func parseIORegProperties(out []byte) (map[string][]byte, error) {
	props := make(map[string][]byte)

	s := bufio.NewScanner(bytes.NewReader(out))
	s.Buffer(make([]byte, 0, 64*1024), maxIORegLine)

	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(strings.TrimLeft(key, " \t|"))
		value = strings.TrimSpace(value)

		if len(key) < 2 || !strings.HasPrefix(key, `"`) || !strings.HasSuffix(key, `"`) {
			continue
		}

		if !strings.HasPrefix(value, "<") || !strings.HasSuffix(value, ">") {
			continue
		}

		data, err := hex.DecodeString(strings.Trim(value, "<>"))
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}

		props[strings.Trim(key, `"`)] = data
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return props, nil
}
