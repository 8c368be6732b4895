// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import "github.com/bureau-foundation/gputelemetry/lib/schema"

// GPUProber enumerates GPU hardware for a specific driver family.
type GPUProber interface {
	// Enumerate returns static GPU information for all GPUs this
	// prober manages. Returns nil (not an error) if none are found.
	Enumerate() []schema.GPUInfo
}

// GPUCollector reads dynamic GPU metrics. Implementations hold their
// backing resources (an NVML session, open device nodes) between
// Collect calls and release them in Close.
type GPUCollector interface {
	// Collect returns current stats for all GPUs the collector can
	// see. Returns nil when monitoring is not possible.
	Collect() []schema.GPUStatus

	// Close releases held resources. Collect after Close returns nil.
	Close()
}

// Inventory runs every prober in order and concatenates the results.
func Inventory(probers ...GPUProber) []schema.GPUInfo {
	var gpus []schema.GPUInfo
	for _, prober := range probers {
		gpus = append(gpus, prober.Enumerate()...)
	}
	return gpus
}
