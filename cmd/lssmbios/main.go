// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// lssmbios locates the SMBIOS entry point and structure table of the
// running host, decodes the structures and prints a summary.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"
	"system-transparency.org/stsmbios/opts"
	"system-transparency.org/stsmbios/smbios"
	"system-transparency.org/stsmbios/stlog"
)

const (
	// HelpText is the command line help.
	HelpText = "lssmbios locates, decodes and prints the SMBIOS data of this host"

	exitFailure  = 1
	exitNotFound = 2
)

//nolint:gochecknoglobals
var (
	app = kingpin.New("lssmbios", HelpText)

	configFile = app.Flag("config", "JSON configuration file").ExistingFile()
	backends   = app.Flag("backend", "Enable only this backend, can be repeated").Enums("export", "memory", "service")
	logLevel   = app.Flag("loglevel", "Log level").Enum("error", "warn", "info", "debug")
	kernelLog  optionalBool
	format     = app.Flag("format", "Output format").Enum("text", "yaml")
	dumpTable  = app.Flag("dump-table", "Write the raw structure table to this file").String()
	dumpEntry  = app.Flag("dump-entry", "Write the raw entry point to this file").String()
)

// streamer acquires the SMBIOS data.
type streamer interface {
	Stream() (*smbios.Result, error)
}

func main() {
	app.Flag("klog", "Log to the kernel log instead of stderr, --no-klog overrides the config file").
		SetValue(&kernelLog)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	o, err := loadOpts(*configFile, flagLoader{
		backends:  *backends,
		logLevel:  *logLevel,
		kernelLog: kernelLog.value,
		format:    *format,
	})
	if err != nil {
		stlog.Error("%v", err)
		os.Exit(exitFailure)
	}

	setupLogging(o)

	if !privileged() {
		stlog.Warn("not running with elevated privileges, SMBIOS sources may be unreadable")
	}

	sel := smbios.NewSelector(smbios.BackendsOf(o.Backends...)...)

	os.Exit(run(os.Stdout, o, sel, dumps{table: *dumpTable, entry: *dumpEntry}))
}

func loadOpts(config string, flags opts.Loader) (*opts.Opts, error) {
	loaders := []opts.Loader{opts.Defaults{}}

	if config != "" {
		f, err := os.Open(config)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		loaders = append(loaders, opts.NewJSON(f))
	}

	loaders = append(loaders, flags)

	o, err := opts.NewOpts(loaders...)
	if err != nil {
		return nil, err
	}

	if err := opts.Validate(o); err != nil {
		return nil, err
	}

	return o, nil
}

func setupLogging(o *opts.Opts) {
	stlog.SetLevel(o.LogLevel)

	if o.KernelLog {
		if err := stlog.SetOutput(stlog.KernelSyslog); err != nil {
			stlog.Warn("%v, logging to stderr", err)
		}
	}
}

// dumps names the files raw data is written to. Empty names are skipped.
type dumps struct {
	table string
	entry string
}

func (d dumps) write(res *smbios.Result) error {
	if d.entry != "" {
		if err := os.WriteFile(d.entry, res.EntryBytes, 0o600); err != nil {
			return err
		}

		stlog.Info("wrote %d bytes of entry point to %s", len(res.EntryBytes), d.entry)
	}

	if d.table != "" {
		if err := os.WriteFile(d.table, res.Table, 0o600); err != nil {
			return err
		}

		stlog.Info("wrote %d bytes of structure table to %s", len(res.Table), d.table)
	}

	return nil
}

func run(w io.Writer, o *opts.Opts, s streamer, d dumps) int {
	res, err := s.Stream()
	if err != nil {
		stlog.Error("%v", err)

		if errors.Is(err, smbios.ErrEntryPointNotFound) {
			diagnose()

			return exitNotFound
		}

		return exitFailure
	}

	stlog.Debug("acquired %d bytes of SMBIOS data from %s backend", len(res.Table), res.Backend)

	if err := d.write(res); err != nil {
		stlog.Error("%v", err)

		return exitFailure
	}

	structures, err := decode(res)
	if err != nil {
		stlog.Error("%v", err)

		return exitFailure
	}

	sum := newSummary(res, structures)

	switch o.Format {
	case opts.FormatYAML:
		err = sum.writeYAML(w)
	default:
		err = sum.writeText(w)
	}

	if err != nil {
		stlog.Error("%v", fmt.Errorf("print summary: %w", err))

		return exitFailure
	}

	return 0
}
