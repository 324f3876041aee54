// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/alecthomas/kingpin.v2"
	"system-transparency.org/stsmbios/opts"
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/stlog"
)

func boolp(b bool) *bool {
	return &b
}

func TestFlagLoader(t *testing.T) {
	o, err := opts.NewOpts(opts.Defaults{}, flagLoader{
		backends:  []string{"service", "export"},
		logLevel:  "debug",
		kernelLog: boolp(true),
		format:    "yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, []smbios.BackendKind{smbios.BackendService, smbios.BackendExport}, o.Backends)
	assert.Equal(t, stlog.DebugLevel, o.LogLevel)
	assert.True(t, o.KernelLog)
	assert.Equal(t, opts.FormatYAML, o.Format)
}

func TestFlagLoaderUnset(t *testing.T) {
	o, err := opts.NewOpts(opts.Defaults{}, flagLoader{})
	require.NoError(t, err)

	want, err := opts.NewOpts(opts.Defaults{})
	require.NoError(t, err)

	assert.Equal(t, want, o)
}

func TestFlagLoaderInvalid(t *testing.T) {
	for _, f := range []flagLoader{
		{backends: []string{"dmi"}},
		{logLevel: "loud"},
		{format: "xml"},
	} {
		_, err := opts.NewOpts(opts.Defaults{}, f)
		assert.Error(t, err)
	}
}

func TestLoadOpts(t *testing.T) {
	config := filepath.Join(t.TempDir(), "lssmbios.json")
	require.NoError(t, os.WriteFile(config, []byte(`{
		"acquisition": {"backends": ["memory"]},
		"output": {"log_level": "warn", "kernel_log": false, "format": "yaml"}
	}`), 0o600))

	o, err := loadOpts(config, flagLoader{format: "text"})
	require.NoError(t, err)

	assert.Equal(t, []smbios.BackendKind{smbios.BackendMemory}, o.Backends)
	assert.Equal(t, stlog.WarnLevel, o.LogLevel)
	assert.Equal(t, opts.FormatText, o.Format)
}

func TestLoadOptsErrors(t *testing.T) {
	_, err := loadOpts(filepath.Join(t.TempDir(), "missing.json"), flagLoader{})
	assert.Error(t, err)

	config := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(config, []byte(`{"acquisition": {"backends": []}}`), 0o600))

	_, err = loadOpts(config, flagLoader{})
	assert.Error(t, err)
}

func TestKernelLogFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want *bool
	}{
		{name: "unset", args: nil, want: nil},
		{name: "set", args: []string{"--klog"}, want: boolp(true)},
		{name: "negated", args: []string{"--no-klog"}, want: boolp(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var klog optionalBool

			a := kingpin.New("test", "")
			a.Flag("klog", "").SetValue(&klog)

			_, err := a.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, klog.value)
		})
	}
}

func TestKernelLogOverridesConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "lssmbios.json")
	require.NoError(t, os.WriteFile(config, []byte(`{
		"output": {"log_level": "info", "kernel_log": true, "format": "text"}
	}`), 0o600))

	o, err := loadOpts(config, flagLoader{})
	require.NoError(t, err)
	assert.True(t, o.KernelLog)

	o, err = loadOpts(config, flagLoader{kernelLog: boolp(false)})
	require.NoError(t, err)
	assert.False(t, o.KernelLog)
}
