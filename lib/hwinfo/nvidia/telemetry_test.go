// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia/nvidiatest"
)

// telemetryCalls invokes every per-call operation once against index.
func telemetryCalls(telemetry *nvidia.Telemetry, index uint32) map[string]error {
	results := make(map[string]error)
	record := func(op string, err error) { results[op] = err }

	_, err := telemetry.Init()
	record(nvidia.OpInit, err)
	_, err = telemetry.DeviceCount()
	record(nvidia.OpDeviceCount, err)
	_, err = telemetry.DriverVersion()
	record(nvidia.OpDriverVersion, err)
	_, err = telemetry.NVMLVersion()
	record(nvidia.OpNVMLVersion, err)
	_, err = telemetry.DeviceName(index)
	record(nvidia.OpDeviceName, err)
	_, err = telemetry.DeviceUUID(index)
	record(nvidia.OpDeviceUUID, err)
	_, err = telemetry.DevicePCISlot(index)
	record(nvidia.OpDevicePCISlot, err)
	_, err = telemetry.DeviceTemperature(index)
	record(nvidia.OpDeviceTemperature, err)
	_, err = telemetry.DeviceMemoryInfo(index)
	record(nvidia.OpDeviceMemoryInfo, err)
	_, err = telemetry.DeviceUtilization(index)
	record(nvidia.OpDeviceUtilization, err)
	_, err = telemetry.DevicePowerUsage(index)
	record(nvidia.OpDevicePowerUsage, err)
	_, err = telemetry.DevicePowerLimit(index)
	record(nvidia.OpDevicePowerLimit, err)
	_, err = telemetry.DeviceClockInfo(index)
	record(nvidia.OpDeviceClockInfo, err)
	_, err = telemetry.DeviceMaxClockInfo(index)
	record(nvidia.OpDeviceMaxClockInfo, err)
	_, err = telemetry.DevicePCIeLinkInfo(index)
	record(nvidia.OpDevicePCIeLinkInfo, err)
	_, err = telemetry.DevicePCIeThroughput(index)
	record(nvidia.OpDevicePCIeThroughput, err)
	_, err = telemetry.DeviceFanSpeed(index)
	record(nvidia.OpDeviceFanSpeed, err)
	_, err = telemetry.DevicePerformanceState(index)
	record(nvidia.OpDevicePerformanceState, err)
	_, err = telemetry.DeviceEncoderUtilization(index)
	record(nvidia.OpDeviceEncoderUtilization, err)
	_, err = telemetry.DeviceDecoderUtilization(index)
	record(nvidia.OpDeviceDecoderUtilization, err)
	_, err = telemetry.DeviceComputeProcesses(index)
	record(nvidia.OpDeviceComputeProcesses, err)
	_, err = telemetry.DeviceGraphicsProcesses(index)
	record(nvidia.OpDeviceGraphicsProcesses, err)
	_, err = telemetry.DeviceComputeProcessesCount(index)
	record(nvidia.OpDeviceComputeProcessesCount, err)
	_, err = telemetry.DeviceGraphicsProcessesCount(index)
	record(nvidia.OpDeviceGraphicsProcessesCount, err)
	_, err = telemetry.DeviceECCCounters(index)
	record(nvidia.OpDeviceECCCounters, err)
	_, err = telemetry.DeviceECCErrors(index)
	record(nvidia.OpDeviceECCErrors, err)
	return results
}

func TestTelemetryInit(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	status, err := nvidia.New(library, nil).Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if status != "NVML initialized successfully" {
		t.Errorf("Init() = %q", status)
	}
	if library.InitCalls() != 1 || library.ShutdownCalls() != 1 {
		t.Errorf("Init/Shutdown calls = %d/%d, want 1/1", library.InitCalls(), library.ShutdownCalls())
	}
}

func TestTelemetryEveryOperationSucceedsOnSingleGPU(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	telemetry := nvidia.New(library, nil)

	results := telemetryCalls(telemetry, 0)
	if len(results) != len(nvidia.SystemOperations)+len(nvidia.DeviceOperations) {
		t.Errorf("exercised %d operations, want %d", len(results),
			len(nvidia.SystemOperations)+len(nvidia.DeviceOperations))
	}
	for op, err := range results {
		if err != nil {
			t.Errorf("%s: %v", op, err)
		}
	}
}

func TestTelemetryReleasesSessionOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		library func() *nvidiatest.FakeLibrary
		index   uint32
	}{
		{"success", nvidiatest.NewSingleGPU, 0},
		{"device not found", nvidiatest.NewSingleGPU, 4},
		{"field unavailable", func() *nvidiatest.FakeLibrary {
			library := nvidiatest.NewSingleGPU()
			device := library.Devices[0]
			for _, method := range []string{
				"GetName", "GetUUID", "GetPciInfo", "GetTemperature", "GetMemoryInfo",
				"GetUtilizationRates", "GetPowerUsage", "GetPowerManagementLimit",
				"GetClockInfo", "GetMaxClockInfo", "GetCurrPcieLinkGeneration",
				"GetPcieThroughput", "GetFanSpeed", "GetPerformanceState",
				"GetEncoderUtilization", "GetDecoderUtilization",
				"GetComputeRunningProcesses", "GetGraphicsRunningProcesses",
				"GetTotalEccErrors",
			} {
				device.Fail(nvml.ERROR_NOT_SUPPORTED, method)
			}
			library.CountReturn = nvml.ERROR_UNKNOWN
			library.VersionFail = nvml.ERROR_UNKNOWN
			return library
		}, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			library := test.library()
			telemetryCalls(nvidia.New(library, nil), test.index)

			if library.InitCalls() == 0 {
				t.Fatal("no sessions were opened")
			}
			if library.InitCalls() != library.ShutdownCalls() {
				t.Errorf("Init called %d times, Shutdown %d", library.InitCalls(), library.ShutdownCalls())
			}
			if references := library.OpenReferences(); references != 0 {
				t.Errorf("NVML references left open = %d", references)
			}
		})
	}
}

func TestTelemetryInitFailureIsSessionErrorForEveryOperation(t *testing.T) {
	library := &nvidiatest.FakeLibrary{InitReturn: nvml.ERROR_LIBRARY_NOT_FOUND}
	results := telemetryCalls(nvidia.New(library, nil), 0)

	for op, err := range results {
		if !errors.Is(err, nvidia.ErrSessionInitFailed) {
			t.Errorf("%s: error = %v, want ErrSessionInitFailed", op, err)
			continue
		}
		var nvidiaErr *nvidia.Error
		if errors.As(err, &nvidiaErr) && nvidiaErr.Op != op {
			t.Errorf("%s: error labeled with Op %q", op, nvidiaErr.Op)
		}
	}
	if library.ShutdownCalls() != 0 {
		t.Errorf("Shutdown called %d times with no successful Init", library.ShutdownCalls())
	}
}

func TestTelemetryErrorsCarryOperationName(t *testing.T) {
	results := telemetryCalls(nvidia.New(nvidiatest.NewSingleGPU(), nil), 9)

	for _, op := range nvidia.DeviceOperations {
		err := results[op]
		var nvidiaErr *nvidia.Error
		if !errors.As(err, &nvidiaErr) {
			t.Errorf("%s: error %v is not *nvidia.Error", op, err)
			continue
		}
		if nvidiaErr.Op != op {
			t.Errorf("%s: Op = %q", op, nvidiaErr.Op)
		}
		if nvidiaErr.Stage != nvidia.StageDevice {
			t.Errorf("%s: Stage = %q, want %q", op, nvidiaErr.Stage, nvidia.StageDevice)
		}
	}
}

func TestTelemetrySessionPerCall(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	telemetry := nvidia.New(library, nil)

	for range 4 {
		if _, err := telemetry.DeviceTemperature(0); err != nil {
			t.Fatalf("DeviceTemperature: %v", err)
		}
	}
	if library.InitCalls() != 4 {
		t.Errorf("Init called %d times for 4 calls, want 4", library.InitCalls())
	}
}

func TestTelemetryConcurrentCalls(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	telemetry := nvidia.New(library, nil)

	var waitGroup sync.WaitGroup
	for range 16 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			if _, err := telemetry.DeviceMemoryInfo(0); err != nil {
				t.Errorf("DeviceMemoryInfo: %v", err)
			}
		}()
	}
	waitGroup.Wait()

	if references := library.OpenReferences(); references != 0 {
		t.Errorf("NVML references left open = %d", references)
	}
}

func TestTelemetryOpenReturnsHeldSession(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	session, err := nvidia.New(library, nil).Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if library.OpenReferences() != 1 {
		t.Errorf("references while held = %d, want 1", library.OpenReferences())
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if library.OpenReferences() != 0 {
		t.Errorf("references after Close = %d, want 0", library.OpenReferences())
	}
}
