// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package main

import "golang.org/x/sys/windows"

func privileged() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
