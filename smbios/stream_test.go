// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smbios

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	kind      BackendKind
	available bool
	err       error
	acquired  int
}

func (b *fakeBackend) Kind() BackendKind {
	return b.kind
}

func (b *fakeBackend) Available() bool {
	return b.available
}

func (b *fakeBackend) Acquire() (*Result, error) {
	b.acquired++
	if b.err != nil {
		return nil, b.err
	}

	return &Result{Backend: b.kind, Table: []byte{byte(b.kind)}}, nil
}

func TestSelectorPriority(t *testing.T) {
	export := &fakeBackend{kind: BackendExport, available: true}
	memory := &fakeBackend{kind: BackendMemory, available: true}
	service := &fakeBackend{kind: BackendService, available: true}

	tests := []struct {
		name     string
		backends []Backend
		want     BackendKind
	}{
		{
			name:     "export over memory",
			backends: []Backend{memory, export},
			want:     BackendExport,
		},
		{
			name:     "memory over service",
			backends: []Backend{service, memory},
			want:     BackendMemory,
		},
		{
			name:     "export over service",
			backends: []Backend{service, export},
			want:     BackendExport,
		},
		{
			name:     "all available",
			backends: []Backend{service, memory, export},
			want:     BackendExport,
		},
		{
			name:     "skip unavailable",
			backends: []Backend{service, &fakeBackend{kind: BackendExport}, &fakeBackend{kind: BackendMemory}},
			want:     BackendService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSelector(tt.backends...).Stream()
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Backend)
		})
	}
}

func TestSelectorOrder(t *testing.T) {
	first := &fakeBackend{kind: BackendService}
	second := &fakeBackend{kind: BackendService, err: errors.New("second")}
	export := &fakeBackend{kind: BackendExport}

	s := NewSelector(first, nil, export, second)
	assert.Equal(t, []Backend{export, first, second}, s.Backends())
}

func TestSelectorNothingAvailable(t *testing.T) {
	backends := []Backend{
		&fakeBackend{kind: BackendExport},
		&fakeBackend{kind: BackendMemory},
		&fakeBackend{kind: BackendService},
	}

	_, err := NewSelector(backends...).Stream()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntryPointNotFound), err)

	for _, b := range backends {
		assert.Zero(t, b.(*fakeBackend).acquired, "unavailable backend must not be acquired")
	}

	_, err = NewSelector().Stream()
	assert.True(t, errors.Is(err, ErrEntryPointNotFound), err)
}

func TestSelectorNoFallbackAfterFailure(t *testing.T) {
	errBroken := errors.New("broken")
	export := &fakeBackend{kind: BackendExport, available: true, err: errBroken}
	memory := &fakeBackend{kind: BackendMemory, available: true}

	_, err := NewSelector(memory, export).Stream()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBroken), err)
	assert.Equal(t, 1, export.acquired)
	assert.Equal(t, 0, memory.acquired)
}

func TestSelectorKeepsBackendErrorKind(t *testing.T) {
	mem := newSparseMemory(legacyMemorySize)

	_, err := NewSelector(memoryBackend(t, mem)).Stream()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntryPointNotFound), err)

	mem = newSparseMemory(legacyMemorySize).set(0xF0010, encodeEntry32(0x7FFE0000, 0x1000, 1))
	_, err = NewSelector(memoryBackend(t, mem)).Stream()
	require.Error(t, err)
	assert.Equal(t, ErrIO, KindOf(err))
}

func TestStreamScenarioMemoryScan(t *testing.T) {
	mem := newSparseMemory(0x7FFE1000).
		set(0xF0010, encodeEntry32(0x7FFE0000, 0x1000, 20))

	dir := t.TempDir()
	export := &ExportBackend{
		EntryPointPath: filepath.Join(dir, "smbios_entry_point"),
		TablePath:      filepath.Join(dir, "DMI"),
	}
	service := serviceBackend(&fakeConnector{})

	res, err := NewSelector(export, memoryBackend(t, mem), service).Stream()
	require.NoError(t, err)
	require.Equal(t, Bits32, res.Entry.Kind())

	addr, size := res.Entry.Table()
	assert.Equal(t, uint64(0x7FFE0000), addr)
	assert.Equal(t, uint64(0x1000), size)
	assert.Len(t, res.Table, 4096)

	n, err := io.Copy(io.Discard, res.Reader())
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)
}

func TestStreamScenarioNothingPresent(t *testing.T) {
	dir := t.TempDir()
	backends := []Backend{
		&ExportBackend{
			EntryPointPath: filepath.Join(dir, "smbios_entry_point"),
			TablePath:      filepath.Join(dir, "DMI"),
		},
		&MemoryBackend{Path: filepath.Join(dir, "mem"), Window: LegacyWindow},
		serviceBackend(&fakeConnector{}),
		&FirmwareTableBackend{},
	}

	_, err := NewSelector(backends...).Stream()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntryPointNotFound), err)
	assert.False(t, errors.Is(err, ErrIO), err)
}

func TestBackendsOf(t *testing.T) {
	all := DefaultBackends()
	require.Len(t, all, 4)

	kinds := func(bs []Backend) []BackendKind {
		var ks []BackendKind
		for _, b := range bs {
			ks = append(ks, b.Kind())
		}

		return ks
	}

	assert.Equal(t, []BackendKind{BackendExport, BackendMemory, BackendService, BackendService}, kinds(all))
	assert.Equal(t, []BackendKind{BackendMemory}, kinds(BackendsOf(BackendMemory)))
	assert.Equal(t, []BackendKind{BackendExport, BackendService, BackendService}, kinds(BackendsOf(BackendService, BackendExport)))
	assert.Empty(t, BackendsOf())
}
