// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"encoding/json"
	"fmt"
	"reflect"

	"system-transparency.org/stsmbios/stlog"
)

// Format controls how results are printed.
type Format int

const (
	FormatUnset Format = iota
	FormatText
	FormatYAML
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatYAML:
		return "yaml"
	default:
		return "unset"
	}
}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	toID := map[string]Format{
		"text": FormatText,
		"yaml": FormatYAML,
	}

	f, ok := toID[s]
	if !ok {
		return FormatUnset, ErrUnknownFormat
	}

	return f, nil
}

// MarshalJSON implements json.Marshaler.
func (f Format) MarshalJSON() ([]byte, error) {
	if f == FormatUnset {
		return []byte(JSONNull), nil
	}

	return json.Marshal(f.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Format) UnmarshalJSON(data []byte) error {
	if string(data) == JSONNull {
		*f = FormatUnset

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	v, err := ParseFormat(s)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value: fmt.Sprintf("string %q", s),
			Type:  reflect.TypeOf(f),
		}
	}

	*f = v

	return nil
}

// Output groups the configuration of logging and printing.
type Output struct {
	LogLevel  stlog.LogLevel `json:"log_level"`
	KernelLog bool           `json:"kernel_log"`
	Format    Format         `json:"format"`
}

// UnmarshalJSON implements json.Unmarshaler.
//
// All fields of Output need to be present in JSON and unknown fields
// are not allowed.
func (o *Output) UnmarshalJSON(data []byte) error {
	type alias Output

	var v alias
	if err := strictUnmarshal(data, &v, jsonTags(o)); err != nil {
		return err
	}

	*o = Output(v)

	return nil
}
