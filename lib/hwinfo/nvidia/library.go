// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import "github.com/NVIDIA/go-nvml/pkg/nvml"

// Library is the slice of NVML's library-level API the facade uses.
// [NewLibrary] returns the production implementation; tests substitute
// an in-memory fake (see nvidiatest).
type Library interface {
	// Init initializes NVML. NVML reference-counts Init/Shutdown
	// pairs, so concurrent sessions are independent.
	Init() nvml.Return

	// Shutdown releases one Init reference.
	Shutdown() nvml.Return

	// ErrorString renders a return code as NVML's message text.
	ErrorString(ret nvml.Return) string

	// DeviceCount returns the number of GPUs visible to NVML.
	DeviceCount() (int, nvml.Return)

	// DeviceByIndex resolves a zero-based index to a device handle.
	// Out-of-range indices return ERROR_INVALID_ARGUMENT.
	DeviceByIndex(index int) (Device, nvml.Return)

	// DriverVersion returns the installed kernel driver version.
	DriverVersion() (string, nvml.Return)

	// NVMLVersion returns the NVML library version.
	NVMLVersion() (string, nvml.Return)
}

// Device is the slice of NVML's per-device API the facade uses. Every
// nvml.Device satisfies it.
type Device interface {
	GetName() (string, nvml.Return)
	GetUUID() (string, nvml.Return)
	GetPciInfo() (nvml.PciInfo, nvml.Return)
	GetTemperature(sensor nvml.TemperatureSensors) (uint32, nvml.Return)
	GetMemoryInfo() (nvml.Memory, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
	GetPowerUsage() (uint32, nvml.Return)
	GetPowerManagementLimit() (uint32, nvml.Return)
	GetClockInfo(clock nvml.ClockType) (uint32, nvml.Return)
	GetMaxClockInfo(clock nvml.ClockType) (uint32, nvml.Return)
	GetCurrPcieLinkGeneration() (int, nvml.Return)
	GetCurrPcieLinkWidth() (int, nvml.Return)
	GetPcieThroughput(counter nvml.PcieUtilCounter) (uint32, nvml.Return)
	GetFanSpeed() (uint32, nvml.Return)
	GetPerformanceState() (nvml.Pstates, nvml.Return)
	GetEncoderUtilization() (uint32, uint32, nvml.Return)
	GetDecoderUtilization() (uint32, uint32, nvml.Return)
	GetComputeRunningProcesses() ([]nvml.ProcessInfo, nvml.Return)
	GetGraphicsRunningProcesses() ([]nvml.ProcessInfo, nvml.Return)
	GetTotalEccErrors(errorType nvml.MemoryErrorType, counterType nvml.EccCounterType) (uint64, nvml.Return)
}

// NewLibrary returns a Library backed by libnvidia-ml.so through
// go-nvml's dlopen loader. An empty path uses the dynamic loader's
// default search. The shared object is not opened until Init.
func NewLibrary(path string) Library {
	var options []nvml.LibraryOption
	if path != "" {
		options = append(options, nvml.WithLibraryPath(path))
	}
	return &nvmlLibrary{nvml: nvml.New(options...)}
}

// nvmlLibrary adapts nvml.Interface to Library.
type nvmlLibrary struct {
	nvml nvml.Interface
}

func (l *nvmlLibrary) Init() nvml.Return {
	return l.nvml.Init()
}

func (l *nvmlLibrary) Shutdown() nvml.Return {
	return l.nvml.Shutdown()
}

func (l *nvmlLibrary) ErrorString(ret nvml.Return) string {
	return l.nvml.ErrorString(ret)
}

func (l *nvmlLibrary) DeviceCount() (int, nvml.Return) {
	return l.nvml.DeviceGetCount()
}

func (l *nvmlLibrary) DeviceByIndex(index int) (Device, nvml.Return) {
	device, ret := l.nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		return nil, ret
	}
	return device, ret
}

func (l *nvmlLibrary) DriverVersion() (string, nvml.Return) {
	return l.nvml.SystemGetDriverVersion()
}

func (l *nvmlLibrary) NVMLVersion() (string, nvml.Return) {
	return l.nvml.SystemGetNVMLVersion()
}
