// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/stlog"
)

// Defaults initializes Opts with all backends enabled, info logging to
// stderr and text output.
type Defaults struct{}

// Load implements Loader.
func (Defaults) Load(o *Opts) error {
	o.Acquisition = Acquisition{
		Backends: append([]smbios.BackendKind(nil), smbios.AllBackendKinds...),
	}
	o.Output = Output{
		LogLevel: stlog.InfoLevel,
		Format:   FormatText,
	}

	return nil
}
