// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// maxFanSpeedPercent caps DeviceFanSpeed. NVML documents that the
// reported speed can exceed 100% on some boards.
const maxFanSpeedPercent = 100

// DeviceCount returns the number of GPUs NVML can see right now.
func (s *Session) DeviceCount() (int, error) {
	return systemField(s, OpDeviceCount, "device count", Library.DeviceCount)
}

// DriverVersion returns the kernel driver version (e.g., "550.54.14").
func (s *Session) DriverVersion() (string, error) {
	return systemField(s, OpDriverVersion, "driver version", Library.DriverVersion)
}

// NVMLVersion returns the NVML library version (e.g., "12.550.54.14").
func (s *Session) NVMLVersion() (string, error) {
	return systemField(s, OpNVMLVersion, "NVML version", Library.NVMLVersion)
}

// DeviceName returns the product name (e.g., "NVIDIA GeForce RTX 4090").
func (s *Session) DeviceName(index uint32) (string, error) {
	return deviceField(s, OpDeviceName, "device name", index, Device.GetName)
}

// DeviceUUID returns the GPU UUID ("GPU-xxxxxxxx-...") exactly as NVML
// reports it. Use [ParseUUID] to compare UUIDs across sources.
func (s *Session) DeviceUUID(index uint32) (string, error) {
	return deviceField(s, OpDeviceUUID, "UUID", index, Device.GetUUID)
}

// DevicePCISlot returns the device's PCI address in sysfs form
// ("0000:01:00.0"), the join key with sysfs-probed inventory.
func (s *Session) DevicePCISlot(index uint32) (string, error) {
	return deviceField(s, OpDevicePCISlot, "PCI info", index, func(device Device) (string, nvml.Return) {
		info, ret := device.GetPciInfo()
		if ret != nvml.SUCCESS {
			return "", ret
		}
		return pciSlot(info), nvml.SUCCESS
	})
}

// DeviceTemperature returns the GPU core temperature in whole degrees
// Celsius.
func (s *Session) DeviceTemperature(index uint32) (uint32, error) {
	return deviceField(s, OpDeviceTemperature, "temperature", index, func(device Device) (uint32, nvml.Return) {
		return device.GetTemperature(nvml.TEMPERATURE_GPU)
	})
}

// DeviceMemoryInfo returns total, free and used framebuffer memory in
// bytes from a single NVML read.
func (s *Session) DeviceMemoryInfo(index uint32) (MemoryInfo, error) {
	return deviceField(s, OpDeviceMemoryInfo, "memory info", index, func(device Device) (MemoryInfo, nvml.Return) {
		memory, ret := device.GetMemoryInfo()
		return MemoryInfo{Total: memory.Total, Free: memory.Free, Used: memory.Used}, ret
	})
}

// DeviceUtilization returns GPU and memory-controller utilization in
// percent from a single NVML read.
func (s *Session) DeviceUtilization(index uint32) (Utilization, error) {
	return deviceField(s, OpDeviceUtilization, "utilization", index, func(device Device) (Utilization, nvml.Return) {
		rates, ret := device.GetUtilizationRates()
		return Utilization{GPU: rates.Gpu, Memory: rates.Memory}, ret
	})
}

// DevicePowerUsage returns the current board power draw in milliwatts.
func (s *Session) DevicePowerUsage(index uint32) (uint32, error) {
	return deviceField(s, OpDevicePowerUsage, "power usage", index, Device.GetPowerUsage)
}

// DevicePowerLimit returns the power management limit in milliwatts.
func (s *Session) DevicePowerLimit(index uint32) (uint32, error) {
	return deviceField(s, OpDevicePowerLimit, "power limit", index, Device.GetPowerManagementLimit)
}

// DeviceClockInfo returns the current graphics, SM and memory clocks
// in MHz.
func (s *Session) DeviceClockInfo(index uint32) (ClockInfo, error) {
	return deviceField(s, OpDeviceClockInfo, "clock info", index, func(device Device) (ClockInfo, nvml.Return) {
		return readClocks(device.GetClockInfo)
	})
}

// DeviceMaxClockInfo returns the maximum graphics, SM and memory clocks
// in MHz.
func (s *Session) DeviceMaxClockInfo(index uint32) (ClockInfo, error) {
	return deviceField(s, OpDeviceMaxClockInfo, "max clock info", index, func(device Device) (ClockInfo, nvml.Return) {
		return readClocks(device.GetMaxClockInfo)
	})
}

// DevicePCIeLinkInfo returns the current PCIe generation and width.
func (s *Session) DevicePCIeLinkInfo(index uint32) (PCIeLink, error) {
	return deviceField(s, OpDevicePCIeLinkInfo, "PCIe link info", index, func(device Device) (PCIeLink, nvml.Return) {
		generation, ret := device.GetCurrPcieLinkGeneration()
		if ret != nvml.SUCCESS {
			return PCIeLink{}, ret
		}
		width, ret := device.GetCurrPcieLinkWidth()
		if ret != nvml.SUCCESS {
			return PCIeLink{}, ret
		}
		return PCIeLink{Generation: generation, Width: width}, nvml.SUCCESS
	})
}

// DevicePCIeThroughput returns PCIe TX and RX throughput in KB/s.
func (s *Session) DevicePCIeThroughput(index uint32) (PCIeThroughput, error) {
	return deviceField(s, OpDevicePCIeThroughput, "PCIe throughput", index, func(device Device) (PCIeThroughput, nvml.Return) {
		tx, ret := device.GetPcieThroughput(nvml.PCIE_UTIL_TX_BYTES)
		if ret != nvml.SUCCESS {
			return PCIeThroughput{}, ret
		}
		rx, ret := device.GetPcieThroughput(nvml.PCIE_UTIL_RX_BYTES)
		if ret != nvml.SUCCESS {
			return PCIeThroughput{}, ret
		}
		return PCIeThroughput{TX: tx, RX: rx}, nvml.SUCCESS
	})
}

// DeviceFanSpeed returns the intended fan speed as a percentage in
// [0, 100]. Passively cooled boards return a field error.
func (s *Session) DeviceFanSpeed(index uint32) (uint32, error) {
	return deviceField(s, OpDeviceFanSpeed, "fan speed", index, func(device Device) (uint32, nvml.Return) {
		speed, ret := device.GetFanSpeed()
		return min(speed, maxFanSpeedPercent), ret
	})
}

// DevicePerformanceState returns the current P-state, 0 (maximum
// performance) through 15 (minimum). A device that reports an unknown
// P-state yields a field error with Return ERROR_NOT_SUPPORTED.
func (s *Session) DevicePerformanceState(index uint32) (int, error) {
	return deviceField(s, OpDevicePerformanceState, "performance state", index, func(device Device) (int, nvml.Return) {
		state, ret := device.GetPerformanceState()
		if ret != nvml.SUCCESS {
			return 0, ret
		}
		if state < nvml.PSTATE_0 || state > nvml.PSTATE_15 {
			return 0, nvml.ERROR_NOT_SUPPORTED
		}
		return int(state), nvml.SUCCESS
	})
}

// DeviceEncoderUtilization returns video encoder utilization and its
// sampling period.
func (s *Session) DeviceEncoderUtilization(index uint32) (CodecUtilization, error) {
	return deviceField(s, OpDeviceEncoderUtilization, "encoder utilization", index, func(device Device) (CodecUtilization, nvml.Return) {
		return codecUtilization(device.GetEncoderUtilization())
	})
}

// DeviceDecoderUtilization returns video decoder utilization and its
// sampling period.
func (s *Session) DeviceDecoderUtilization(index uint32) (CodecUtilization, error) {
	return deviceField(s, OpDeviceDecoderUtilization, "decoder utilization", index, func(device Device) (CodecUtilization, nvml.Return) {
		return codecUtilization(device.GetDecoderUtilization())
	})
}

// DeviceComputeProcesses lists processes with a compute context on the
// device.
func (s *Session) DeviceComputeProcesses(index uint32) ([]Process, error) {
	return deviceField(s, OpDeviceComputeProcesses, "compute processes", index, func(device Device) ([]Process, nvml.Return) {
		return processList(device.GetComputeRunningProcesses())
	})
}

// DeviceGraphicsProcesses lists processes with a graphics context on
// the device.
func (s *Session) DeviceGraphicsProcesses(index uint32) ([]Process, error) {
	return deviceField(s, OpDeviceGraphicsProcesses, "graphics processes", index, func(device Device) ([]Process, nvml.Return) {
		return processList(device.GetGraphicsRunningProcesses())
	})
}

// DeviceComputeProcessesCount returns how many processes hold a compute
// context on the device.
func (s *Session) DeviceComputeProcessesCount(index uint32) (int, error) {
	return deviceField(s, OpDeviceComputeProcessesCount, "compute processes", index, func(device Device) (int, nvml.Return) {
		processes, ret := device.GetComputeRunningProcesses()
		return len(processes), ret
	})
}

// DeviceGraphicsProcessesCount returns how many processes hold a
// graphics context on the device.
func (s *Session) DeviceGraphicsProcessesCount(index uint32) (int, error) {
	return deviceField(s, OpDeviceGraphicsProcessesCount, "graphics processes", index, func(device Device) (int, nvml.Return) {
		processes, ret := device.GetGraphicsRunningProcesses()
		return len(processes), ret
	})
}

func readClocks(get func(nvml.ClockType) (uint32, nvml.Return)) (ClockInfo, nvml.Return) {
	var clocks ClockInfo
	for _, domain := range []struct {
		clock  nvml.ClockType
		target *uint32
	}{
		{nvml.CLOCK_GRAPHICS, &clocks.Graphics},
		{nvml.CLOCK_SM, &clocks.SM},
		{nvml.CLOCK_MEM, &clocks.Memory},
	} {
		value, ret := get(domain.clock)
		if ret != nvml.SUCCESS {
			return ClockInfo{}, ret
		}
		*domain.target = value
	}
	return clocks, nvml.SUCCESS
}

func codecUtilization(percent, periodMicroseconds uint32, ret nvml.Return) (CodecUtilization, nvml.Return) {
	if ret != nvml.SUCCESS {
		return CodecUtilization{}, ret
	}
	return CodecUtilization{Percent: percent, SamplingPeriodMicroseconds: periodMicroseconds}, ret
}

func processList(infos []nvml.ProcessInfo, ret nvml.Return) ([]Process, nvml.Return) {
	if ret != nvml.SUCCESS {
		return nil, ret
	}
	processes := make([]Process, 0, len(infos))
	for _, info := range infos {
		processes = append(processes, Process{PID: info.Pid, UsedGPUMemoryBytes: info.UsedGpuMemory})
	}
	return processes, ret
}

// pciSlot formats NVML's PCI location the way sysfs names devices.
func pciSlot(info nvml.PciInfo) string {
	return fmt.Sprintf("%04x:%02x:%02x.0", info.Domain, info.Bus, info.Device)
}
