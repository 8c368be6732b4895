// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import "log/slog"

// InitStatus is the status string returned by Telemetry.Init.
const InitStatus = "NVML initialized successfully"

// Telemetry is the per-call facade: every method opens its own
// Session, performs one query, and closes the session before
// returning, on success and failure alike. It holds no mutable state
// and is safe for concurrent use.
//
// Callers issuing many queries back to back can amortize NVML
// initialization with [Telemetry.Open] and the equivalent methods on
// [Session].
type Telemetry struct {
	library Library
	logger  *slog.Logger
}

// New returns a Telemetry over library. A nil logger discards output.
func New(library Library, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = discardLogger()
	}
	return &Telemetry{library: library, logger: logger}
}

// Open returns a caller-owned Session on the same library.
func (t *Telemetry) Open() (*Session, error) {
	return openSession(t.library, t.logger, OpInit)
}

// perCall opens a session labeled with op, runs query, and closes the
// session on every exit path.
func perCall[T any](t *Telemetry, op string, query func(*Session) (T, error)) (T, error) {
	session, err := openSession(t.library, t.logger, op)
	if err != nil {
		var zero T
		return zero, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			t.logger.Warn("closing nvml session", "op", op, "error", closeErr)
		}
	}()
	return query(session)
}

// Init verifies that NVML can be initialized and returns InitStatus.
func (t *Telemetry) Init() (string, error) {
	return perCall(t, OpInit, func(*Session) (string, error) {
		return InitStatus, nil
	})
}

func (t *Telemetry) DeviceCount() (int, error) {
	return perCall(t, OpDeviceCount, (*Session).DeviceCount)
}

func (t *Telemetry) DriverVersion() (string, error) {
	return perCall(t, OpDriverVersion, (*Session).DriverVersion)
}

func (t *Telemetry) NVMLVersion() (string, error) {
	return perCall(t, OpNVMLVersion, (*Session).NVMLVersion)
}

// perDevice adapts a Session accessor taking an index to perCall.
func perDevice[T any](t *Telemetry, op string, index uint32, accessor func(*Session, uint32) (T, error)) (T, error) {
	return perCall(t, op, func(session *Session) (T, error) {
		return accessor(session, index)
	})
}

func (t *Telemetry) DeviceName(index uint32) (string, error) {
	return perDevice(t, OpDeviceName, index, (*Session).DeviceName)
}

func (t *Telemetry) DeviceUUID(index uint32) (string, error) {
	return perDevice(t, OpDeviceUUID, index, (*Session).DeviceUUID)
}

func (t *Telemetry) DevicePCISlot(index uint32) (string, error) {
	return perDevice(t, OpDevicePCISlot, index, (*Session).DevicePCISlot)
}

func (t *Telemetry) DeviceTemperature(index uint32) (uint32, error) {
	return perDevice(t, OpDeviceTemperature, index, (*Session).DeviceTemperature)
}

func (t *Telemetry) DeviceMemoryInfo(index uint32) (MemoryInfo, error) {
	return perDevice(t, OpDeviceMemoryInfo, index, (*Session).DeviceMemoryInfo)
}

func (t *Telemetry) DeviceUtilization(index uint32) (Utilization, error) {
	return perDevice(t, OpDeviceUtilization, index, (*Session).DeviceUtilization)
}

func (t *Telemetry) DevicePowerUsage(index uint32) (uint32, error) {
	return perDevice(t, OpDevicePowerUsage, index, (*Session).DevicePowerUsage)
}

func (t *Telemetry) DevicePowerLimit(index uint32) (uint32, error) {
	return perDevice(t, OpDevicePowerLimit, index, (*Session).DevicePowerLimit)
}

func (t *Telemetry) DeviceClockInfo(index uint32) (ClockInfo, error) {
	return perDevice(t, OpDeviceClockInfo, index, (*Session).DeviceClockInfo)
}

func (t *Telemetry) DeviceMaxClockInfo(index uint32) (ClockInfo, error) {
	return perDevice(t, OpDeviceMaxClockInfo, index, (*Session).DeviceMaxClockInfo)
}

func (t *Telemetry) DevicePCIeLinkInfo(index uint32) (PCIeLink, error) {
	return perDevice(t, OpDevicePCIeLinkInfo, index, (*Session).DevicePCIeLinkInfo)
}

func (t *Telemetry) DevicePCIeThroughput(index uint32) (PCIeThroughput, error) {
	return perDevice(t, OpDevicePCIeThroughput, index, (*Session).DevicePCIeThroughput)
}

func (t *Telemetry) DeviceFanSpeed(index uint32) (uint32, error) {
	return perDevice(t, OpDeviceFanSpeed, index, (*Session).DeviceFanSpeed)
}

func (t *Telemetry) DevicePerformanceState(index uint32) (int, error) {
	return perDevice(t, OpDevicePerformanceState, index, (*Session).DevicePerformanceState)
}

func (t *Telemetry) DeviceEncoderUtilization(index uint32) (CodecUtilization, error) {
	return perDevice(t, OpDeviceEncoderUtilization, index, (*Session).DeviceEncoderUtilization)
}

func (t *Telemetry) DeviceDecoderUtilization(index uint32) (CodecUtilization, error) {
	return perDevice(t, OpDeviceDecoderUtilization, index, (*Session).DeviceDecoderUtilization)
}

func (t *Telemetry) DeviceComputeProcesses(index uint32) ([]Process, error) {
	return perDevice(t, OpDeviceComputeProcesses, index, (*Session).DeviceComputeProcesses)
}

func (t *Telemetry) DeviceGraphicsProcesses(index uint32) ([]Process, error) {
	return perDevice(t, OpDeviceGraphicsProcesses, index, (*Session).DeviceGraphicsProcesses)
}

func (t *Telemetry) DeviceComputeProcessesCount(index uint32) (int, error) {
	return perDevice(t, OpDeviceComputeProcessesCount, index, (*Session).DeviceComputeProcessesCount)
}

func (t *Telemetry) DeviceGraphicsProcessesCount(index uint32) (int, error) {
	return perDevice(t, OpDeviceGraphicsProcessesCount, index, (*Session).DeviceGraphicsProcessesCount)
}

func (t *Telemetry) DeviceECCCounters(index uint32) (ECCCounters, error) {
	return perDevice(t, OpDeviceECCCounters, index, (*Session).DeviceECCCounters)
}

// DeviceECCErrors returns (0, 0) rather than an error on hardware
// without ECC. Session and device failures are still returned.
func (t *Telemetry) DeviceECCErrors(index uint32) (ECCErrors, error) {
	return perDevice(t, OpDeviceECCErrors, index, (*Session).DeviceECCErrors)
}

// Snapshot reads every device field under one session.
func (t *Telemetry) Snapshot(index uint32) (Snapshot, error) {
	return perDevice(t, OpSnapshot, index, (*Session).Snapshot)
}
