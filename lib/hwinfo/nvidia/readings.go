// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

// MemoryInfo is framebuffer memory in bytes, read in one NVML call.
// Free + Used may be less than Total: the driver reserves some memory.
type MemoryInfo struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
	Used  uint64 `json:"used"`
}

// Utilization is the percentage of the last sample period during which
// the GPU kernel engine (GPU) and the memory controller (Memory) were
// busy. Both are in [0, 100].
type Utilization struct {
	GPU    uint32 `json:"gpu"`
	Memory uint32 `json:"memory"`
}

// ClockInfo holds clock frequencies in MHz for the three clock
// domains, read from the same device handle.
type ClockInfo struct {
	Graphics uint32 `json:"graphics"`
	SM       uint32 `json:"sm"`
	Memory   uint32 `json:"memory"`
}

// PCIeLink is the currently negotiated PCIe generation and lane count.
type PCIeLink struct {
	Generation int `json:"generation"`
	Width      int `json:"width"`
}

// PCIeThroughput is PCIe traffic in KB/s over NVML's 20ms sample window.
type PCIeThroughput struct {
	TX uint32 `json:"tx"`
	RX uint32 `json:"rx"`
}

// CodecUtilization is encoder or decoder engine utilization in percent,
// with the sampling period it was measured over in microseconds.
type CodecUtilization struct {
	Percent                    uint32 `json:"percent"`
	SamplingPeriodMicroseconds uint32 `json:"sampling_period_us"`
}

// ECCErrors is the lifetime (aggregate) count of corrected and
// uncorrected memory errors. Counters the device does not support
// read as zero.
type ECCErrors struct {
	Corrected   uint64 `json:"corrected"`
	Uncorrected uint64 `json:"uncorrected"`
}

// ECCCounter is one ECC counter with an explicit supported flag, so a
// device with no ECC hardware is distinguishable from a device that
// has seen zero errors.
type ECCCounter struct {
	Count     uint64 `json:"count"`
	Supported bool   `json:"supported"`
}

// ECCCounters is the tagged form of ECCErrors.
type ECCCounters struct {
	Corrected   ECCCounter `json:"corrected"`
	Uncorrected ECCCounter `json:"uncorrected"`
}

// Errors collapses the tagged counters to plain counts.
func (c ECCCounters) Errors() ECCErrors {
	return ECCErrors{Corrected: c.Corrected.Count, Uncorrected: c.Uncorrected.Count}
}

// Process is one process holding a context on a GPU.
type Process struct {
	PID uint32 `json:"pid"`

	// UsedGPUMemoryBytes is the framebuffer memory attributed to the
	// process. NVML reports 0 when it cannot attribute usage (for
	// example under Windows WDDM or without sufficient privileges).
	UsedGPUMemoryBytes uint64 `json:"used_gpu_memory_bytes"`
}
