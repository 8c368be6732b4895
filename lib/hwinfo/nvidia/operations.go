// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

// Operation names. They appear as Error.Op, as Snapshot error keys,
// and as the command names accepted by nvml-probe.
const (
	OpInit          = "init"
	OpDeviceCount   = "device_count"
	OpDriverVersion = "driver_version"
	OpNVMLVersion   = "nvml_version"

	OpDeviceName                   = "device_name"
	OpDeviceUUID                   = "device_uuid"
	OpDevicePCISlot                = "device_pci_slot"
	OpDeviceTemperature            = "device_temperature"
	OpDeviceMemoryInfo             = "device_memory_info"
	OpDeviceUtilization            = "device_utilization"
	OpDevicePowerUsage             = "device_power_usage"
	OpDevicePowerLimit             = "device_power_limit"
	OpDeviceClockInfo              = "device_clock_info"
	OpDeviceMaxClockInfo           = "device_max_clock_info"
	OpDevicePCIeLinkInfo           = "device_pcie_link_info"
	OpDevicePCIeThroughput         = "device_pcie_throughput"
	OpDeviceFanSpeed               = "device_fan_speed"
	OpDevicePerformanceState       = "device_performance_state"
	OpDeviceEncoderUtilization     = "device_encoder_utilization"
	OpDeviceDecoderUtilization     = "device_decoder_utilization"
	OpDeviceComputeProcesses       = "device_compute_processes"
	OpDeviceGraphicsProcesses      = "device_graphics_processes"
	OpDeviceComputeProcessesCount  = "device_compute_processes_count"
	OpDeviceGraphicsProcessesCount = "device_graphics_processes_count"
	OpDeviceECCCounters            = "device_ecc_counters"
	OpDeviceECCErrors              = "device_ecc_errors"

	// OpDevice is the Op of errors from a bare Session.Device call.
	OpDevice = "device"

	// OpSnapshot is the Op of errors from Session.Snapshot.
	OpSnapshot = "snapshot"
)

// SystemOperations take no device index.
var SystemOperations = []string{
	OpInit,
	OpDeviceCount,
	OpDriverVersion,
	OpNVMLVersion,
}

// DeviceOperations take a zero-based device index.
var DeviceOperations = []string{
	OpDeviceName,
	OpDeviceUUID,
	OpDevicePCISlot,
	OpDeviceTemperature,
	OpDeviceMemoryInfo,
	OpDeviceUtilization,
	OpDevicePowerUsage,
	OpDevicePowerLimit,
	OpDeviceClockInfo,
	OpDeviceMaxClockInfo,
	OpDevicePCIeLinkInfo,
	OpDevicePCIeThroughput,
	OpDeviceFanSpeed,
	OpDevicePerformanceState,
	OpDeviceEncoderUtilization,
	OpDeviceDecoderUtilization,
	OpDeviceComputeProcesses,
	OpDeviceGraphicsProcesses,
	OpDeviceComputeProcessesCount,
	OpDeviceGraphicsProcessesCount,
	OpDeviceECCCounters,
	OpDeviceECCErrors,
}
