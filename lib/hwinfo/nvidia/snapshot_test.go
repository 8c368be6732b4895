// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia/nvidiatest"
)

func TestSnapshotSingleGPU(t *testing.T) {
	library := nvidiatest.NewSingleGPU()

	snapshot, err := nvidia.New(library, nil).Snapshot(0)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Errors != nil {
		t.Errorf("Errors = %v, want nil", snapshot.Errors)
	}
	if snapshot.Name != "NVIDIA GeForce RTX 4090" {
		t.Errorf("Name = %q", snapshot.Name)
	}
	if snapshot.PCISlot != "0000:01:00.0" {
		t.Errorf("PCISlot = %q", snapshot.PCISlot)
	}
	if snapshot.Memory.Total != 25757220864 {
		t.Errorf("Memory.Total = %d", snapshot.Memory.Total)
	}
	if snapshot.PerformanceState != 8 {
		t.Errorf("PerformanceState = %d, want 8", snapshot.PerformanceState)
	}
	if len(snapshot.GraphicsProcesses) != 2 {
		t.Errorf("GraphicsProcesses = %d entries, want 2", len(snapshot.GraphicsProcesses))
	}
	if snapshot.ECC.Corrected != (nvidia.ECCCounter{Count: 7, Supported: true}) {
		t.Errorf("ECC.Corrected = %+v", snapshot.ECC.Corrected)
	}
	if library.InitCalls() != 1 {
		t.Errorf("Init called %d times for one snapshot, want 1", library.InitCalls())
	}
}

func TestSnapshotRecordsFieldFailures(t *testing.T) {
	library := nvidiatest.NewSingleGPU()
	library.Devices[0].Fail(nvml.ERROR_NOT_SUPPORTED, "GetFanSpeed", "GetPerformanceState", "GetTotalEccErrors")
	session := openSession(t, library)

	snapshot, err := session.Snapshot(0)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snapshot.Errors) != 2 {
		t.Errorf("Errors = %v, want entries for fan speed and performance state", snapshot.Errors)
	}
	message, ok := snapshot.Errors[nvidia.OpDeviceFanSpeed]
	if !ok || !strings.Contains(message, "Not Supported") {
		t.Errorf("Errors[%q] = %q", nvidia.OpDeviceFanSpeed, message)
	}
	if snapshot.FanSpeedPercent != 0 {
		t.Errorf("FanSpeedPercent = %d, want 0", snapshot.FanSpeedPercent)
	}
	if snapshot.PerformanceState != -1 {
		t.Errorf("PerformanceState = %d, want -1 when unreadable", snapshot.PerformanceState)
	}
	// ECC degrades to unsupported counters, not an error entry.
	if _, ok := snapshot.Errors[nvidia.OpDeviceECCCounters]; ok {
		t.Errorf("ECC recorded as an error: %v", snapshot.Errors)
	}
	if snapshot.TemperatureCelsius != 41 {
		t.Errorf("TemperatureCelsius = %d, want 41", snapshot.TemperatureCelsius)
	}
}

func TestSnapshotDeviceNotFound(t *testing.T) {
	session := openSession(t, nvidiatest.NewSingleGPU())

	_, err := session.Snapshot(2)
	if !errors.Is(err, nvidia.ErrDeviceNotFound) {
		t.Fatalf("Snapshot(2) = %v, want ErrDeviceNotFound", err)
	}
	var nvidiaErr *nvidia.Error
	if errors.As(err, &nvidiaErr) && nvidiaErr.Op != nvidia.OpSnapshot {
		t.Errorf("Op = %q, want %q", nvidiaErr.Op, nvidia.OpSnapshot)
	}
}
