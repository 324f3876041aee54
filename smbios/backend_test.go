// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"system-transparency.org/stsmbios/sterror"
)

func TestBackendKindText(t *testing.T) {
	for _, k := range AllBackendKinds {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got BackendKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	var kinds []BackendKind
	require.NoError(t, json.Unmarshal([]byte(`["service", "Export"]`), &kinds))
	assert.Equal(t, []BackendKind{BackendService, BackendExport}, kinds)

	var k BackendKind
	err := k.UnmarshalText([]byte("floppy"))
	assert.True(t, errors.Is(err, ErrUnknownBackend), err)

	_, err = BackendKind(0).MarshalText()
	assert.True(t, errors.Is(err, ErrUnknownBackend), err)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want sterror.Kind
	}{
		{err: nil, want: ""},
		{err: errors.New("plain"), want: ""},
		{err: sterror.E(sterror.Memory, ErrIO, io.EOF), want: ErrIO},
		{err: sterror.E(sterror.Selector, sterror.E(sterror.Anchor, ErrEntryPointNotFound)), want: ErrEntryPointNotFound},
		{err: sterror.E(ErrInvalidEntryPoint), want: ErrInvalidEntryPoint},
		{err: sterror.E(ErrServiceFailed), want: ErrServiceFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err))
	}
}

func TestResultReader(t *testing.T) {
	res := &Result{Table: []byte{1, 2, 3}}

	b, err := io.ReadAll(res.Reader())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	assert.False(t, exists(path))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.True(t, exists(path))
}
