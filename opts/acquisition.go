// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import "system-transparency.org/stsmbios/smbios"

// Acquisition groups the configuration of SMBIOS acquisition.
type Acquisition struct {
	// Backends lists the enabled backends. They are always probed in
	// their fixed priority order, no matter the order given here.
	Backends []smbios.BackendKind `json:"backends"`
}

// UnmarshalJSON implements json.Unmarshaler.
//
// All fields of Acquisition need to be present in JSON and unknown fields
// are not allowed.
func (a *Acquisition) UnmarshalJSON(data []byte) error {
	type alias Acquisition

	var v alias
	if err := strictUnmarshal(data, &v, jsonTags(a)); err != nil {
		return err
	}

	*a = Acquisition(v)

	return nil
}
