// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidiatest

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
)

// FakeDevice implements nvidia.Device with fixed readings.
type FakeDevice struct {
	Name string
	UUID string
	PCI  nvml.PciInfo

	TemperatureCelsius uint32
	Memory             nvml.Memory
	Utilization        nvml.Utilization

	PowerUsage uint32
	PowerLimit uint32

	// Clocks and MaxClocks are keyed by clock domain. A missing domain
	// reads as ERROR_NOT_SUPPORTED.
	Clocks    map[nvml.ClockType]uint32
	MaxClocks map[nvml.ClockType]uint32

	PCIeGeneration int
	PCIeWidth      int
	PCIeTX         uint32
	PCIeRX         uint32

	FanSpeed         uint32
	PerformanceState nvml.Pstates

	EncoderPercent uint32
	EncoderPeriod  uint32
	DecoderPercent uint32
	DecoderPeriod  uint32

	ComputeProcesses  []nvml.ProcessInfo
	GraphicsProcesses []nvml.ProcessInfo

	ECCCorrected   uint64
	ECCUncorrected uint64

	// Lost makes DeviceByIndex fail with ERROR_GPU_IS_LOST.
	Lost bool

	// Failures maps a method name (e.g., "GetTemperature") to the
	// return code it fails with. GetTotalEccErrors can also be failed
	// per counter with FailECCCorrected and FailECCUncorrected.
	Failures map[string]nvml.Return
}

var _ nvidia.Device = (*FakeDevice)(nil)

// Fail makes each named method fail with ret and returns the device.
func (d *FakeDevice) Fail(ret nvml.Return, methods ...string) *FakeDevice {
	if d.Failures == nil {
		d.Failures = make(map[string]nvml.Return)
	}
	for _, method := range methods {
		d.Failures[method] = ret
	}
	return d
}

func (d *FakeDevice) failure(method string) nvml.Return {
	if ret, ok := d.Failures[method]; ok {
		return ret
	}
	return nvml.SUCCESS
}

func (d *FakeDevice) GetName() (string, nvml.Return) {
	if ret := d.failure("GetName"); ret != nvml.SUCCESS {
		return "", ret
	}
	return d.Name, nvml.SUCCESS
}

func (d *FakeDevice) GetUUID() (string, nvml.Return) {
	if ret := d.failure("GetUUID"); ret != nvml.SUCCESS {
		return "", ret
	}
	return d.UUID, nvml.SUCCESS
}

func (d *FakeDevice) GetPciInfo() (nvml.PciInfo, nvml.Return) {
	if ret := d.failure("GetPciInfo"); ret != nvml.SUCCESS {
		return nvml.PciInfo{}, ret
	}
	return d.PCI, nvml.SUCCESS
}

func (d *FakeDevice) GetTemperature(sensor nvml.TemperatureSensors) (uint32, nvml.Return) {
	if ret := d.failure("GetTemperature"); ret != nvml.SUCCESS {
		return 0, ret
	}
	if sensor != nvml.TEMPERATURE_GPU {
		return 0, nvml.ERROR_INVALID_ARGUMENT
	}
	return d.TemperatureCelsius, nvml.SUCCESS
}

func (d *FakeDevice) GetMemoryInfo() (nvml.Memory, nvml.Return) {
	if ret := d.failure("GetMemoryInfo"); ret != nvml.SUCCESS {
		return nvml.Memory{}, ret
	}
	return d.Memory, nvml.SUCCESS
}

func (d *FakeDevice) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	if ret := d.failure("GetUtilizationRates"); ret != nvml.SUCCESS {
		return nvml.Utilization{}, ret
	}
	return d.Utilization, nvml.SUCCESS
}

func (d *FakeDevice) GetPowerUsage() (uint32, nvml.Return) {
	if ret := d.failure("GetPowerUsage"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PowerUsage, nvml.SUCCESS
}

func (d *FakeDevice) GetPowerManagementLimit() (uint32, nvml.Return) {
	if ret := d.failure("GetPowerManagementLimit"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PowerLimit, nvml.SUCCESS
}

func (d *FakeDevice) GetClockInfo(clock nvml.ClockType) (uint32, nvml.Return) {
	return clockReading("GetClockInfo", d, d.Clocks, clock)
}

func (d *FakeDevice) GetMaxClockInfo(clock nvml.ClockType) (uint32, nvml.Return) {
	return clockReading("GetMaxClockInfo", d, d.MaxClocks, clock)
}

func clockReading(method string, d *FakeDevice, clocks map[nvml.ClockType]uint32, clock nvml.ClockType) (uint32, nvml.Return) {
	if ret := d.failure(method); ret != nvml.SUCCESS {
		return 0, ret
	}
	value, ok := clocks[clock]
	if !ok {
		return 0, nvml.ERROR_NOT_SUPPORTED
	}
	return value, nvml.SUCCESS
}

func (d *FakeDevice) GetCurrPcieLinkGeneration() (int, nvml.Return) {
	if ret := d.failure("GetCurrPcieLinkGeneration"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PCIeGeneration, nvml.SUCCESS
}

func (d *FakeDevice) GetCurrPcieLinkWidth() (int, nvml.Return) {
	if ret := d.failure("GetCurrPcieLinkWidth"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PCIeWidth, nvml.SUCCESS
}

func (d *FakeDevice) GetPcieThroughput(counter nvml.PcieUtilCounter) (uint32, nvml.Return) {
	if ret := d.failure("GetPcieThroughput"); ret != nvml.SUCCESS {
		return 0, ret
	}
	switch counter {
	case nvml.PCIE_UTIL_TX_BYTES:
		return d.PCIeTX, nvml.SUCCESS
	case nvml.PCIE_UTIL_RX_BYTES:
		return d.PCIeRX, nvml.SUCCESS
	}
	return 0, nvml.ERROR_INVALID_ARGUMENT
}

func (d *FakeDevice) GetFanSpeed() (uint32, nvml.Return) {
	if ret := d.failure("GetFanSpeed"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.FanSpeed, nvml.SUCCESS
}

func (d *FakeDevice) GetPerformanceState() (nvml.Pstates, nvml.Return) {
	if ret := d.failure("GetPerformanceState"); ret != nvml.SUCCESS {
		return nvml.PSTATE_UNKNOWN, ret
	}
	return d.PerformanceState, nvml.SUCCESS
}

func (d *FakeDevice) GetEncoderUtilization() (uint32, uint32, nvml.Return) {
	if ret := d.failure("GetEncoderUtilization"); ret != nvml.SUCCESS {
		return 0, 0, ret
	}
	return d.EncoderPercent, d.EncoderPeriod, nvml.SUCCESS
}

func (d *FakeDevice) GetDecoderUtilization() (uint32, uint32, nvml.Return) {
	if ret := d.failure("GetDecoderUtilization"); ret != nvml.SUCCESS {
		return 0, 0, ret
	}
	return d.DecoderPercent, d.DecoderPeriod, nvml.SUCCESS
}

func (d *FakeDevice) GetComputeRunningProcesses() ([]nvml.ProcessInfo, nvml.Return) {
	if ret := d.failure("GetComputeRunningProcesses"); ret != nvml.SUCCESS {
		return nil, ret
	}
	return d.ComputeProcesses, nvml.SUCCESS
}

func (d *FakeDevice) GetGraphicsRunningProcesses() ([]nvml.ProcessInfo, nvml.Return) {
	if ret := d.failure("GetGraphicsRunningProcesses"); ret != nvml.SUCCESS {
		return nil, ret
	}
	return d.GraphicsProcesses, nvml.SUCCESS
}

func (d *FakeDevice) GetTotalEccErrors(errorType nvml.MemoryErrorType, counterType nvml.EccCounterType) (uint64, nvml.Return) {
	if ret := d.failure("GetTotalEccErrors"); ret != nvml.SUCCESS {
		return 0, ret
	}
	if counterType != nvml.AGGREGATE_ECC {
		return 0, nvml.ERROR_INVALID_ARGUMENT
	}
	switch errorType {
	case nvml.MEMORY_ERROR_TYPE_CORRECTED:
		if ret := d.failure(FailECCCorrected); ret != nvml.SUCCESS {
			return 0, ret
		}
		return d.ECCCorrected, nvml.SUCCESS
	case nvml.MEMORY_ERROR_TYPE_UNCORRECTED:
		if ret := d.failure(FailECCUncorrected); ret != nvml.SUCCESS {
			return 0, ret
		}
		return d.ECCUncorrected, nvml.SUCCESS
	}
	return 0, nvml.ERROR_INVALID_ARGUMENT
}
