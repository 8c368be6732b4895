// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the published shapes of GPU inventory and GPU
// status records. Both types carry json tags; lib/codec falls back to
// the json tag names when encoding them as CBOR, so one struct serves
// both encodings.
package schema

// GPUInfo describes a single GPU's static hardware identity. The
// PCISlot field is the join key with GPUStatus entries.
type GPUInfo struct {
	// Vendor is the GPU vendor name mapped from the PCI vendor ID
	// (0x10de is "NVIDIA").
	Vendor string `json:"vendor"`

	// ModelName is the human-readable model (e.g., "NVIDIA GeForce
	// RTX 4090"). From NVML when a session is available, otherwise
	// from /proc/driver/nvidia/gpus/<slot>/information.
	ModelName string `json:"model_name,omitempty"`

	// PCIDeviceID is the PCI device ID (e.g., "0x2684").
	PCIDeviceID string `json:"pci_device_id"`

	// PCISlot is the PCI slot address (e.g., "0000:01:00.0"). Stable
	// across reboots and unique per machine.
	PCISlot string `json:"pci_slot"`

	// NVMLIndex is the zero-based NVML device index for this GPU, or
	// -1 when NVML did not report the device.
	NVMLIndex int `json:"nvml_index"`

	// VRAMTotalBytes is total framebuffer memory in bytes, from NVML
	// memory info. Zero when NVML is unavailable.
	VRAMTotalBytes uint64 `json:"vram_total_bytes,omitempty"`

	// UUID is the NVIDIA GPU UUID in its canonical
	// "GPU-xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
	UUID string `json:"uuid,omitempty"`

	// VBIOSVersion is the video BIOS version from /proc/driver/nvidia.
	VBIOSVersion string `json:"vbios_version,omitempty"`

	// PCIeGeneration is the current negotiated PCIe generation. Zero
	// if unavailable.
	PCIeGeneration int `json:"pcie_generation,omitempty"`

	// PCIeLinkWidth is the negotiated lane count (16 for x16). NVML
	// value when available, sysfs current_link_width otherwise.
	PCIeLinkWidth int `json:"pcie_link_width,omitempty"`

	// ThermalLimitCriticalMillidegrees is the hwmon temp1_crit value
	// (nouveau exposes it, the proprietary driver usually does not).
	ThermalLimitCriticalMillidegrees int `json:"thermal_limit_critical_millidegrees,omitempty"`

	// Driver is the kernel driver name: "nvidia" or "nouveau".
	Driver string `json:"driver"`
}

// GPUStatus reports dynamic metrics for a single GPU. Units follow
// NVML: no value is rescaled on the way through.
type GPUStatus struct {
	// PCISlot matches GPUInfo.PCISlot for device correlation.
	PCISlot string `json:"pci_slot"`

	// Index is the NVML device index the sample was read from.
	Index uint32 `json:"index"`

	UtilizationPercent       uint32 `json:"utilization_percent"`
	MemoryUtilizationPercent uint32 `json:"memory_utilization_percent"`

	VRAMUsedBytes  uint64 `json:"vram_used_bytes"`
	VRAMTotalBytes uint64 `json:"vram_total_bytes"`

	// TemperatureCelsius is the GPU core sensor in whole degrees.
	TemperatureCelsius uint32 `json:"temperature_celsius"`

	PowerDrawMilliwatts  uint32 `json:"power_draw_milliwatts"`
	PowerLimitMilliwatts uint32 `json:"power_limit_milliwatts"`

	GraphicsClockMHz uint32 `json:"graphics_clock_mhz"`
	SMClockMHz       uint32 `json:"sm_clock_mhz"`
	MemoryClockMHz   uint32 `json:"memory_clock_mhz"`

	FanSpeedPercent uint32 `json:"fan_speed_percent"`

	// PerformanceState is the P-state (0 is maximum performance, 15
	// minimum). -1 when the driver does not report one.
	PerformanceState int `json:"performance_state"`

	ECCCorrected   uint64 `json:"ecc_corrected"`
	ECCUncorrected uint64 `json:"ecc_uncorrected"`

	ComputeProcesses  int `json:"compute_processes"`
	GraphicsProcesses int `json:"graphics_processes"`
}
