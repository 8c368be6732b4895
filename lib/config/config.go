// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "GPUTELEMETRY_CONFIG"

// SessionMode selects how NVML sessions are scoped.
type SessionMode string

const (
	// PerCall opens and closes a session around every query. NVML is
	// never left initialized between queries.
	PerCall SessionMode = "per-call"

	// Held opens one session and reuses it for every query in the
	// process, closing it on exit.
	Held SessionMode = "held"
)

// Output formats accepted by Output.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Config is the configuration for GPU telemetry tools.
type Config struct {
	// NVML configures how the NVML library is loaded and scoped.
	NVML NVMLConfig `yaml:"nvml"`

	// Devices is the allow-list of NVML device indices. Empty allows
	// every device.
	Devices []uint32 `yaml:"devices"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// Output configures result rendering.
	Output OutputConfig `yaml:"output"`
}

// NVMLConfig configures NVML loading.
type NVMLConfig struct {
	// LibraryPath is the path to libnvidia-ml.so. Empty uses the
	// dynamic loader's search path. ${VAR} and ${VAR:-default} are
	// expanded.
	LibraryPath string `yaml:"library_path"`

	// SessionMode is "per-call" or "held".
	// Default: per-call
	SessionMode SessionMode `yaml:"session_mode"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// OutputConfig configures result rendering.
type OutputConfig struct {
	// Format is one of text, json, cbor.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used for fields a file leaves
// unset.
func Default() *Config {
	return &Config{
		NVML: NVMLConfig{
			SessionMode: PerCall,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// Load loads configuration from the file named by GPUTELEMETRY_CONFIG.
// There is no discovery: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over Default, expands
// variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.NVML.LibraryPath = expandVars(cfg.NVML.LibraryPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration. Every problem is reported, each
// naming the offending field.
func (c *Config) Validate() error {
	var errs []error

	if c.NVML.SessionMode != PerCall && c.NVML.SessionMode != Held {
		errs = append(errs, fmt.Errorf("nvml.session_mode must be %q or %q, got %q",
			PerCall, Held, c.NVML.SessionMode))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	formats := []string{FormatText, FormatJSON, FormatCBOR}
	if !slices.Contains(formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of %v, got %q", formats, c.Output.Format))
	}

	seen := make(map[uint32]bool, len(c.Devices))
	for _, index := range c.Devices {
		if seen[index] {
			errs = append(errs, fmt.Errorf("devices: index %d listed more than once", index))
		}
		seen[index] = true
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return level, nil
}

// DeviceAllowed reports whether index passes the Devices allow-list.
func (c *Config) DeviceAllowed(index uint32) bool {
	return len(c.Devices) == 0 || slices.Contains(c.Devices, index)
}
