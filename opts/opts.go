// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opts holds the configuration of the lssmbios tool.
package opts

// OptsVersion is the Version of Opts. It can be used for validation.
const OptsVersion int = 1

// InvalidError reports invalid data of Opts.
type InvalidError string

// Error implements error interface.
func (e InvalidError) Error() string {
	return string(e)
}

// Loader wraps the Load function.
// Load fills particular fields of Opts depending on its source.
type Loader interface {
	Load(*Opts) error
}

// Opts controls the operation of lssmbios.
type Opts struct {
	Version int
	Acquisition
	Output
}

// NewOpts return a new Opts initialized by the provided Loaders.
func NewOpts(loaders ...Loader) (*Opts, error) {
	opts := &Opts{Version: OptsVersion}

	for _, l := range loaders {
		if err := l.Load(opts); err != nil {
			return nil, err
		}
	}

	return opts, nil
}
