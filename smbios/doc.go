// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smbios locates the SMBIOS entry point and structure table of the
// running host.
//
// Three kinds of backends are probed in a fixed order: a firmware export
// already located by the operating system (sysfs), a scan of physical
// memory (/dev/mem), and a platform service (the AppleSMBIOS service of the
// I/O registry, or the firmware table provider on Windows). The first
// available backend is used. Decoding the structures in the table is left
// to the caller.
package smbios
