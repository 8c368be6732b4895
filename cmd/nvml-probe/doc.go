// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Nvml-probe runs one NVIDIA GPU telemetry query and prints the result.
// It is a thin harness over lib/hwinfo/nvidia: each facade operation is
// available by its snake_case name, plus three aggregate commands.
//
//	nvml-probe [--config FILE] [--format text|json|cbor] <operation> [index]
//
//	nvml-probe device_count
//	nvml-probe device_temperature 0
//	nvml-probe --format json snapshot        # every allowed device
//	nvml-probe --format cbor collect         # hwinfo.GPUStatus records
//	nvml-probe inventory                     # sysfs + NVML hwinfo.GPUInfo
//
// Text output prints scalars bare and structures as YAML keyed by the
// JSON field names. CBOR output is one deterministic CBOR item.
//
// Configuration comes from --config, else GPUTELEMETRY_CONFIG, else
// built-in defaults (see lib/config). --format overrides output.format.
//
// Exit codes:
//
//	0  success
//	1  telemetry error (NVML unavailable, device not found, field unavailable)
//	2  usage or configuration error
package main
