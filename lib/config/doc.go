// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for GPU telemetry
// tools.
//
// Configuration is loaded from a single YAML file specified by:
//   - GPUTELEMETRY_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no automatic discovery and no environment-variable override
// of individual fields. The only expansion performed is ${VAR} and
// ${VAR:-default} in nvml.library_path, so one file can serve hosts
// with different driver install prefixes.
//
// A complete file:
//
//	nvml:
//	  library_path: ${NVIDIA_DRIVER_ROOT:-/usr}/lib/x86_64-linux-gnu/libnvidia-ml.so.1
//	  session_mode: held
//	devices: [0, 2]
//	log:
//	  level: debug
//	output:
//	  format: json
package config
