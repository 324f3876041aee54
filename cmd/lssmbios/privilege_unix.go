// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package main

import "golang.org/x/sys/unix"

func privileged() bool {
	return unix.Geteuid() == 0
}
