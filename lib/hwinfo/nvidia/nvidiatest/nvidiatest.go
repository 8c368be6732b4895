// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package nvidiatest provides an in-memory NVML for tests of code
// built on package nvidia. A FakeLibrary holds a list of FakeDevices
// whose readings are plain fields; any NVML method can be made to fail
// by setting a return code in FakeDevice.Failures.
package nvidiatest

import (
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
)

// Failure keys for the ECC counters, which share one NVML method.
const (
	FailECCCorrected   = "GetTotalEccErrors/corrected"
	FailECCUncorrected = "GetTotalEccErrors/uncorrected"
)

// FakeLibrary implements nvidia.Library. Init and Shutdown are
// reference-counted like real NVML: a device lookup with no
// outstanding Init fails with ERROR_UNINITIALIZED.
//
// Configure the exported fields before handing the library to the code
// under test; they are not guarded against concurrent mutation.
type FakeLibrary struct {
	Devices []*FakeDevice

	// InitReturn, when not SUCCESS, makes every Init fail.
	InitReturn nvml.Return

	// ShutdownReturn, when not SUCCESS, is returned by Shutdown after
	// the reference is released.
	ShutdownReturn nvml.Return

	// CountReturn, when not SUCCESS, makes DeviceCount fail.
	CountReturn nvml.Return

	Driver      string
	Version     string
	VersionFail nvml.Return

	mutex         sync.Mutex
	references    int
	initCalls     int
	shutdownCalls int
}

var _ nvidia.Library = (*FakeLibrary)(nil)

// NewSingleGPU returns a library with one fully populated device that
// supports every query, ECC included.
func NewSingleGPU() *FakeLibrary {
	return &FakeLibrary{
		Devices: []*FakeDevice{NewRTX4090("0000:01:00.0", "GPU-6b1f0c4e-0f2d-4c59-9a43-2f0e3c6d7a11")},
		Driver:  "550.54.14",
		Version: "12.550.54.14",
	}
}

// NewRTX4090 returns a device with plausible readings for an idle
// workstation card at slot.
func NewRTX4090(slot, uuid string) *FakeDevice {
	var domain, bus, device uint32
	fmt.Sscanf(slot, "%x:%x:%x.0", &domain, &bus, &device)
	return &FakeDevice{
		Name:               "NVIDIA GeForce RTX 4090",
		UUID:               uuid,
		PCI:                nvml.PciInfo{Domain: domain, Bus: bus, Device: device},
		TemperatureCelsius: 41,
		Memory:             nvml.Memory{Total: 25757220864, Free: 24930615296, Used: 826605568},
		Utilization:        nvml.Utilization{Gpu: 3, Memory: 1},
		PowerUsage:         28514,
		PowerLimit:         450000,
		Clocks:             map[nvml.ClockType]uint32{nvml.CLOCK_GRAPHICS: 210, nvml.CLOCK_SM: 210, nvml.CLOCK_MEM: 405},
		MaxClocks:          map[nvml.ClockType]uint32{nvml.CLOCK_GRAPHICS: 3105, nvml.CLOCK_SM: 3105, nvml.CLOCK_MEM: 10501},
		PCIeGeneration:     4,
		PCIeWidth:          16,
		PCIeTX:             1024,
		PCIeRX:             2048,
		FanSpeed:           30,
		PerformanceState:   nvml.PSTATE_8,
		EncoderPercent:     0,
		EncoderPeriod:      167000,
		DecoderPercent:     5,
		DecoderPeriod:      167000,
		ComputeProcesses:   []nvml.ProcessInfo{{Pid: 4242, UsedGpuMemory: 536870912}},
		GraphicsProcesses:  []nvml.ProcessInfo{{Pid: 1337, UsedGpuMemory: 104857600}, {Pid: 1338, UsedGpuMemory: 0}},
		ECCCorrected:       7,
		ECCUncorrected:     0,
		Failures:           map[string]nvml.Return{},
	}
}

func (l *FakeLibrary) Init() nvml.Return {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.initCalls++
	if l.InitReturn != nvml.SUCCESS {
		return l.InitReturn
	}
	l.references++
	return nvml.SUCCESS
}

func (l *FakeLibrary) Shutdown() nvml.Return {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.shutdownCalls++
	if l.references == 0 {
		return nvml.ERROR_UNINITIALIZED
	}
	l.references--
	return l.ShutdownReturn
}

// ErrorString mirrors the message texts of nvmlErrorString.
func (l *FakeLibrary) ErrorString(ret nvml.Return) string {
	switch ret {
	case nvml.SUCCESS:
		return "Success"
	case nvml.ERROR_UNINITIALIZED:
		return "Uninitialized"
	case nvml.ERROR_INVALID_ARGUMENT:
		return "Invalid Argument"
	case nvml.ERROR_NOT_SUPPORTED:
		return "Not Supported"
	case nvml.ERROR_NO_PERMISSION:
		return "Insufficient Permissions"
	case nvml.ERROR_NOT_FOUND:
		return "Not Found"
	case nvml.ERROR_DRIVER_NOT_LOADED:
		return "Driver Not Loaded"
	case nvml.ERROR_LIBRARY_NOT_FOUND:
		return "NVML Shared Library Not Found"
	case nvml.ERROR_GPU_IS_LOST:
		return "GPU is lost"
	case nvml.ERROR_UNKNOWN:
		return "Unknown Error"
	}
	return fmt.Sprintf("NVML return code %d", int32(ret))
}

func (l *FakeLibrary) DeviceCount() (int, nvml.Return) {
	if ret := l.requireInit(); ret != nvml.SUCCESS {
		return 0, ret
	}
	if l.CountReturn != nvml.SUCCESS {
		return 0, l.CountReturn
	}
	return len(l.Devices), nvml.SUCCESS
}

func (l *FakeLibrary) DeviceByIndex(index int) (nvidia.Device, nvml.Return) {
	if ret := l.requireInit(); ret != nvml.SUCCESS {
		return nil, ret
	}
	if index < 0 || index >= len(l.Devices) {
		return nil, nvml.ERROR_INVALID_ARGUMENT
	}
	device := l.Devices[index]
	if device.Lost {
		return nil, nvml.ERROR_GPU_IS_LOST
	}
	return device, nvml.SUCCESS
}

func (l *FakeLibrary) DriverVersion() (string, nvml.Return) {
	if ret := l.requireInit(); ret != nvml.SUCCESS {
		return "", ret
	}
	if l.VersionFail != nvml.SUCCESS {
		return "", l.VersionFail
	}
	return l.Driver, nvml.SUCCESS
}

func (l *FakeLibrary) NVMLVersion() (string, nvml.Return) {
	if ret := l.requireInit(); ret != nvml.SUCCESS {
		return "", ret
	}
	if l.VersionFail != nvml.SUCCESS {
		return "", l.VersionFail
	}
	return l.Version, nvml.SUCCESS
}

// InitCalls is the number of Init attempts, successful or not.
func (l *FakeLibrary) InitCalls() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.initCalls
}

// ShutdownCalls is the number of Shutdown calls.
func (l *FakeLibrary) ShutdownCalls() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.shutdownCalls
}

// OpenReferences is the number of successful Inits not yet matched by
// a Shutdown. Zero after every session has been closed.
func (l *FakeLibrary) OpenReferences() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.references
}

func (l *FakeLibrary) requireInit() nvml.Return {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.references == 0 {
		return nvml.ERROR_UNINITIALIZED
	}
	return nvml.SUCCESS
}
