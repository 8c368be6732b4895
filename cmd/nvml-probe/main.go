// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gputelemetry/lib/config"
	"github.com/bureau-foundation/gputelemetry/lib/hwinfo"
	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
	"github.com/bureau-foundation/gputelemetry/lib/schema"
	"github.com/bureau-foundation/gputelemetry/lib/version"
)

const (
	exitOK        = 0
	exitTelemetry = 1
	exitUsage     = 2
)

func main() {
	p := &probe{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newLibrary: nvidia.NewLibrary,
		newProber: func(telemetry *nvidia.Telemetry, logger *slog.Logger) hwinfo.GPUProber {
			return nvidia.NewProber(telemetry, logger)
		},
	}
	os.Exit(p.run(os.Args[1:]))
}

// probe holds the process boundary so tests can substitute output
// streams and the NVML library.
type probe struct {
	stdout io.Writer
	stderr io.Writer

	newLibrary func(path string) nvidia.Library
	newProber  func(*nvidia.Telemetry, *slog.Logger) hwinfo.GPUProber
}

// usageError marks failures that exit with exitUsage.
type usageError struct {
	message string
}

func (e *usageError) Error() string { return e.message }

func usagef(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

func (p *probe) run(args []string) int {
	// Handle --version before anything else.
	if slices.Contains(args, "--version") {
		fmt.Fprintf(p.stdout, "nvml-probe %s\n", version.Info())
		return exitOK
	}

	err := p.execute(args)
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	fmt.Fprintf(p.stderr, "error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		p.printUsage()
		return exitUsage
	}
	return exitTelemetry
}

func (p *probe) execute(args []string) error {
	var configPath, format string
	flagSet := pflag.NewFlagSet("nvml-probe", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&format, "format", "", "output format: text, json, or cbor (overrides output.format)")
	flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			p.printUsage()
			return err
		}
		return usagef("%v", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return usagef("%v", err)
	}
	if format != "" {
		cfg.Output.Format = format
		if err := cfg.Validate(); err != nil {
			return usagef("%v", err)
		}
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		return usagef("missing operation")
	}
	if len(positional) > 2 {
		return usagef("unexpected argument: %s", positional[2])
	}
	operation := positional[0]

	var index *uint32
	if len(positional) == 2 {
		parsed, err := strconv.ParseUint(positional[1], 10, 32)
		if err != nil {
			return usagef("invalid device index %q: must be a non-negative integer", positional[1])
		}
		value := uint32(parsed)
		if !cfg.DeviceAllowed(value) {
			return usagef("device %d is not in the configured devices allow-list %v", value, cfg.Devices)
		}
		index = &value
	}

	level, _ := cfg.LogLevel()
	logger := newLogger(p.stderr, level).With("operation", operation)

	result, err := p.dispatch(cfg, logger, operation, index)
	if err != nil {
		return err
	}
	return render(p.stdout, cfg.Output.Format, result)
}

// loadConfig resolves --config, then GPUTELEMETRY_CONFIG, then
// defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func (p *probe) dispatch(cfg *config.Config, logger *slog.Logger, operation string, index *uint32) (any, error) {
	telemetry := nvidia.New(p.newLibrary(cfg.NVML.LibraryPath), logger)

	switch operation {
	case commandCollect:
		return p.collect(cfg, telemetry, logger, index)
	case commandInventory:
		if index != nil {
			return nil, usagef("%s takes no device index", operation)
		}
		gpus := hwinfo.Inventory(p.newProber(telemetry, logger))
		if gpus == nil {
			gpus = []schema.GPUInfo{}
		}
		return gpus, nil
	}

	systemOp, isSystem := systemOperations[operation]
	deviceOp, isDevice := deviceOperations[operation]
	isKnown := isSystem || isDevice || operation == nvidia.OpInit || operation == commandSnapshot
	if !isKnown {
		return nil, usagef("unknown operation %q", operation)
	}
	if (isSystem || operation == nvidia.OpInit) && index != nil {
		return nil, usagef("%s takes no device index", operation)
	}
	if isDevice && index == nil {
		return nil, usagef("%s requires a device index", operation)
	}

	var q querier = telemetry
	if cfg.NVML.SessionMode == config.Held {
		session, err := telemetry.Open()
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := session.Close(); err != nil {
				logger.Warn("closing nvml session", "error", err)
			}
		}()
		q = session
	}

	switch {
	case operation == nvidia.OpInit:
		if cfg.NVML.SessionMode == config.Held {
			return nvidia.InitStatus, nil
		}
		return telemetry.Init()
	case operation == commandSnapshot:
		return snapshots(cfg, q, index)
	case isSystem:
		return systemOp(q)
	default:
		return deviceOp(q, *index)
	}
}

// snapshots reads one device, or every allowed device when index is
// nil.
func snapshots(cfg *config.Config, q querier, index *uint32) (any, error) {
	if index != nil {
		return q.Snapshot(*index)
	}
	count, err := q.DeviceCount()
	if err != nil {
		return nil, err
	}
	results := []nvidia.Snapshot{}
	for deviceIndex := range uint32(count) {
		if !cfg.DeviceAllowed(deviceIndex) {
			continue
		}
		snapshot, err := q.Snapshot(deviceIndex)
		if err != nil {
			return nil, err
		}
		results = append(results, snapshot)
	}
	return results, nil
}

func (p *probe) collect(cfg *config.Config, telemetry *nvidia.Telemetry, logger *slog.Logger, index *uint32) ([]schema.GPUStatus, error) {
	// The collector reports NVML failure as an empty result; check
	// first so a missing driver is an error here.
	if _, err := telemetry.Init(); err != nil {
		return nil, err
	}

	var collector hwinfo.GPUCollector = nvidia.NewCollector(p.newLibrary(cfg.NVML.LibraryPath), logger)
	defer collector.Close()

	statuses := []schema.GPUStatus{}
	for _, status := range collector.Collect() {
		if index != nil && status.Index != *index {
			continue
		}
		if cfg.DeviceAllowed(status.Index) {
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

func (p *probe) printUsage() {
	operations := []string{nvidia.OpInit}
	for name := range systemOperations {
		operations = append(operations, name)
	}
	sort.Strings(operations[1:])

	deviceNames := make([]string, 0, len(deviceOperations))
	for name := range deviceOperations {
		deviceNames = append(deviceNames, name)
	}
	sort.Strings(deviceNames)

	fmt.Fprintf(p.stderr, `Usage: nvml-probe [--config FILE] [--format text|json|cbor] <operation> [index]

System operations:
  %s

Device operations (require index):
  %s

Aggregate commands:
  snapshot [index]    every device reading, for one or all allowed devices
  collect [index]     hwinfo GPU status records
  inventory           sysfs GPU inventory enriched from NVML

Flags:
  --config FILE       config file (default: $%s, else built-in defaults)
  --format FORMAT     output format, overrides output.format
  --version           print version and exit
`, strings.Join(operations, "\n  "), strings.Join(deviceNames, "\n  "), config.EnvironmentVariable)
}
