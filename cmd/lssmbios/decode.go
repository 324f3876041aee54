// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	dsmbios "github.com/digitalocean/go-smbios/smbios"
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/sterror"
	"system-transparency.org/stsmbios/stlog"
)

// decode hands the acquired table to the structure decoder.
func decode(res *smbios.Result) ([]*dsmbios.Structure, error) {
	ss, err := dsmbios.NewDecoder(res.Reader()).Decode()
	if err != nil {
		return nil, sterror.E(sterror.Op("decode structures"), err)
	}

	if e, ok := res.Entry.(*smbios.Entry32); ok && int(e.StructureCount) != len(ss) {
		stlog.Debug("entry point declares %d structures, decoded %d", e.StructureCount, len(ss))
	}

	return ss, nil
}
