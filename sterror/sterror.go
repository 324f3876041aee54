// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sterror provides the error handling used in stsmbios.
// The core part is the constructor function E().
package sterror

import (
	"errors"
	"strings"
)

// Op describes an operation, usually as the name of the method.
type Op string

// Scope defines the scope of error this is, mostly to identify
// the subsystem where the error occurred.
type Scope string

// Info provides further context to an error.
type Info string

// Kind classifies an error. Two errors of the same Kind match with
// errors.Is regardless of their other fields.
type Kind string

// Error implements the error interface, so a Kind can be used as a
// sentinel value.
func (k Kind) Error() string {
	return string(k)
}

// Scopes of errors.
const (
	Anchor     Scope = "Anchor scan"
	EntryPoint Scope = "Entry point"
	Export     Scope = "Firmware export"
	Memory     Scope = "Physical memory"
	Service    Scope = "Platform service"
	Firmware   Scope = "Firmware table"
	Selector   Scope = "Stream selection"
	Opts       Scope = "Opts"
	Stlog      Scope = "Stlog"
)

// Error provides structured and detailed context. However, some fields
// may be left unset.
//
// An Error value should be created using the E() function.
type Error struct {
	// Op is operation being executed while the error occurred.
	Op Op
	// Scope is the subsystem causing the error.
	Scope Scope
	// Kind classifies the error.
	Kind Kind
	// Info provides further context to the error or holds the string
	// value of the triggering error if it is not wrapped.
	Info Info
	// Err is the underlying wrapped error.
	Err error
}

const (
	colon  string = ": "
	hyphen string = " - "
)

// Error implements the error interface.
func (e Error) Error() string {
	var parts []string

	if e.Scope != "" {
		parts = append(parts, string(e.Scope))
	}

	switch {
	case e.Op != "" && e.Info != "":
		parts = append(parts, string(e.Op)+hyphen+string(e.Info))
	case e.Op != "":
		parts = append(parts, string(e.Op))
	case e.Info != "":
		parts = append(parts, string(e.Info))
	}

	if e.Kind != "" {
		parts = append(parts, string(e.Kind))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if len(parts) == 0 {
		return "unspecified error"
	}

	return strings.Join(parts, colon)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e Error) Is(target error) bool {
	k, ok := target.(Kind)

	return ok && e.Kind != "" && k == e.Kind
}

// E returns an Error constructed from its arguments.
// There should be at least one argument, or E returns an unspecified error.
// The type of each argument determines its meaning.
// If more than one argument of a given type is presented,
// only the last one is recorded.
//
// The types are:
//
//	sterror.Op
//		The performed operation.
//	sterror.Scope
//		The subsystem where the error occurred.
//	sterror.Kind
//		The classification of the error.
//	error
//		The underlying error if it should be wrapped.
//	sterror.Info, string
//		Treated as error message of an error that should
//		not be wrapped or as additional information to the
//		provided error.
//
// Further types will be ignored.
func E(args ...interface{}) Error {
	if len(args) == 0 {
		return Error{Info: "unspecified"}
	}

	var err = Error{}

	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			err.Op = arg
		case Scope:
			err.Scope = arg
		case Kind:
			err.Kind = arg
		case Info:
			err.Info = arg
		case string:
			err.Info = Info(arg)
		case error:
			err.Err = arg
		default:
		}
	}

	return err
}

// Equal returns true if the two provided Errors are equal.
// Wrapped errors of type Error are compared recursively, others
// with errors.Is.
func Equal(got, want Error) bool {
	if got.Scope != want.Scope || got.Op != want.Op ||
		got.Kind != want.Kind || got.Info != want.Info {
		return false
	}

	var gotWrapped, wantWrapped Error

	gotOK := errors.As(got.Err, &gotWrapped)
	wantOK := errors.As(want.Err, &wantWrapped)

	if gotOK != wantOK {
		return false
	}

	if gotOK {
		return Equal(gotWrapped, wantWrapped)
	}

	return errors.Is(got.Err, want.Err)
}
