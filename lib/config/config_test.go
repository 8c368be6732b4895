// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "gputelemetry.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.NVML.SessionMode != PerCall {
		t.Errorf("expected session_mode=per-call, got %s", cfg.NVML.SessionMode)
	}
	if cfg.NVML.LibraryPath != "" {
		t.Errorf("expected empty library_path, got %s", cfg.NVML.LibraryPath)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("expected format=text, got %s", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GPUTELEMETRY_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "GPUTELEMETRY_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	configPath := writeConfig(t, `
nvml:
  session_mode: held
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.NVML.SessionMode != Held {
		t.Errorf("expected session_mode=held, got %s", cfg.NVML.SessionMode)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
nvml:
  library_path: /opt/nvidia/lib64/libnvidia-ml.so.1
  session_mode: held
devices: [0, 2]
log:
  level: debug
output:
  format: cbor
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.NVML.LibraryPath != "/opt/nvidia/lib64/libnvidia-ml.so.1" {
		t.Errorf("expected library_path from file, got %s", cfg.NVML.LibraryPath)
	}
	if cfg.NVML.SessionMode != Held {
		t.Errorf("expected session_mode=held, got %s", cfg.NVML.SessionMode)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[0] != 0 || cfg.Devices[1] != 2 {
		t.Errorf("expected devices=[0 2], got %v", cfg.Devices)
	}
	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v; want DEBUG", level, err)
	}
	if cfg.Output.Format != FormatCBOR {
		t.Errorf("expected format=cbor, got %s", cfg.Output.Format)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	configPath := writeConfig(t, `
output:
  format: json
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.NVML.SessionMode != PerCall {
		t.Errorf("expected default session_mode, got %s", cfg.NVML.SessionMode)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Log.Level)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "nvml: [unclosed\n")
	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestLoadFile_ExpandsLibraryPath(t *testing.T) {
	t.Setenv("NVIDIA_DRIVER_ROOT", "/run/nvidia/driver")
	configPath := writeConfig(t, `
nvml:
  library_path: ${NVIDIA_DRIVER_ROOT}/usr/lib64/libnvidia-ml.so.1
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.NVML.LibraryPath != "/run/nvidia/driver/usr/lib64/libnvidia-ml.so.1" {
		t.Errorf("expected expanded path, got %s", cfg.NVML.LibraryPath)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("GPUTELEMETRY_TEST_SET", "/set")
	t.Setenv("GPUTELEMETRY_TEST_EMPTY", "")

	tests := []struct {
		input string
		want  string
	}{
		{"${GPUTELEMETRY_TEST_SET}/lib", "/set/lib"},
		{"${GPUTELEMETRY_TEST_EMPTY:-/fallback}/lib", "/fallback/lib"},
		{"${GPUTELEMETRY_TEST_SET:-/fallback}/lib", "/set/lib"},
		{"${GPUTELEMETRY_TEST_EMPTY}/lib", "/lib"},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := expandVars(test.input); got != test.want {
				t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(*Config) {}, ""},
		{"bad session mode", func(c *Config) { c.NVML.SessionMode = "sometimes" }, "nvml.session_mode"},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"empty log level", func(c *Config) { c.Log.Level = "" }, "log.level"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"duplicate device", func(c *Config) { c.Devices = []uint32{1, 1} }, "devices"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, want error naming %s", err, test.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.NVML.SessionMode = "bogus"
	cfg.Output.Format = "yaml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"nvml.session_mode", "output.format"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestDeviceAllowed(t *testing.T) {
	cfg := Default()
	if !cfg.DeviceAllowed(7) {
		t.Error("empty allow-list rejected device 7")
	}

	cfg.Devices = []uint32{0, 2}
	for index, want := range map[uint32]bool{0: true, 1: false, 2: true, 3: false} {
		if got := cfg.DeviceAllowed(index); got != want {
			t.Errorf("DeviceAllowed(%d) = %v, want %v", index, got, want)
		}
	}
}
