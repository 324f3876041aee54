// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/shirou/gopsutil/v4/host"
	"system-transparency.org/stsmbios/stlog"
)

// diagnose logs hints on why no SMBIOS source was found.
func diagnose() {
	system, role, err := host.Virtualization()
	if err != nil {
		stlog.Debug("virtualization detection failed: %v", err)

		return
	}

	if system == "" {
		stlog.Info("no virtualization detected, the firmware may not provide SMBIOS tables")

		return
	}

	stlog.Info("running as %s %s, the hypervisor may not expose SMBIOS tables", system, role)
}
