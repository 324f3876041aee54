// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"system-transparency.org/stsmbios/sterror"
)

const JSONNull = "null"

func jsonTags(s interface{}) []string {
	tags := make([]string, 0)

	typ := reflect.TypeOf(s)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return []string{}
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if tag := field.Tag.Get("json"); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// strictUnmarshal decodes data into v. Every key in required must be
// present and keys without a matching field are rejected.
func strictUnmarshal(data []byte, v interface{}, required []string) error {
	var jsonMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		return err
	}

	for _, tag := range required {
		if _, ok := jsonMap[tag]; !ok {
			return fmt.Errorf("missing json key %q", tag)
		}
	}

	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()

	return d.Decode(v)
}

// file is the layout of a configuration file.
type file struct {
	Acquisition *Acquisition `json:"acquisition"`
	Output      *Output      `json:"output"`
}

// JSON initializes Opts from a JSON configuration file. Groups missing
// in the file keep their current values.
type JSON struct {
	src io.Reader
}

// NewJSON returns a new JSON loader reading from src.
func NewJSON(src io.Reader) *JSON {
	return &JSON{src: src}
}

// Load implements Loader.
func (j *JSON) Load(o *Opts) error {
	const operation = sterror.Op("load JSON")

	if j.src == nil {
		return sterror.E(sterror.Opts, operation, errors.New("no source provided"))
	}

	var f file

	d := json.NewDecoder(j.src)
	d.DisallowUnknownFields()

	if err := d.Decode(&f); err != nil {
		return sterror.E(sterror.Opts, operation, err)
	}

	if f.Acquisition != nil {
		if err := AcquisitionValidation().Validate(&Opts{Acquisition: *f.Acquisition}); err != nil {
			return sterror.E(sterror.Opts, operation, err)
		}

		o.Acquisition = *f.Acquisition
	}

	if f.Output != nil {
		if err := OutputValidation().Validate(&Opts{Output: *f.Output}); err != nil {
			return sterror.E(sterror.Opts, operation, err)
		}

		o.Output = *f.Output
	}

	return nil
}
