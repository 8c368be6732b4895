// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/bureau-foundation/gputelemetry/lib/hwinfo/nvidia"
)

// querier is the accessor set shared by *nvidia.Telemetry (per-call
// sessions) and *nvidia.Session (one held session).
type querier interface {
	DeviceCount() (int, error)
	DriverVersion() (string, error)
	NVMLVersion() (string, error)

	DeviceName(index uint32) (string, error)
	DeviceUUID(index uint32) (string, error)
	DevicePCISlot(index uint32) (string, error)
	DeviceTemperature(index uint32) (uint32, error)
	DeviceMemoryInfo(index uint32) (nvidia.MemoryInfo, error)
	DeviceUtilization(index uint32) (nvidia.Utilization, error)
	DevicePowerUsage(index uint32) (uint32, error)
	DevicePowerLimit(index uint32) (uint32, error)
	DeviceClockInfo(index uint32) (nvidia.ClockInfo, error)
	DeviceMaxClockInfo(index uint32) (nvidia.ClockInfo, error)
	DevicePCIeLinkInfo(index uint32) (nvidia.PCIeLink, error)
	DevicePCIeThroughput(index uint32) (nvidia.PCIeThroughput, error)
	DeviceFanSpeed(index uint32) (uint32, error)
	DevicePerformanceState(index uint32) (int, error)
	DeviceEncoderUtilization(index uint32) (nvidia.CodecUtilization, error)
	DeviceDecoderUtilization(index uint32) (nvidia.CodecUtilization, error)
	DeviceComputeProcesses(index uint32) ([]nvidia.Process, error)
	DeviceGraphicsProcesses(index uint32) ([]nvidia.Process, error)
	DeviceComputeProcessesCount(index uint32) (int, error)
	DeviceGraphicsProcessesCount(index uint32) (int, error)
	DeviceECCCounters(index uint32) (nvidia.ECCCounters, error)
	DeviceECCErrors(index uint32) (nvidia.ECCErrors, error)
	Snapshot(index uint32) (nvidia.Snapshot, error)
}

var (
	_ querier = (*nvidia.Telemetry)(nil)
	_ querier = (*nvidia.Session)(nil)
)

type systemOperation func(querier) (any, error)

type deviceOperation func(querier, uint32) (any, error)

// systemOperations excludes init, which depends on the session mode.
var systemOperations = map[string]systemOperation{
	nvidia.OpDeviceCount:   system(querier.DeviceCount),
	nvidia.OpDriverVersion: system(querier.DriverVersion),
	nvidia.OpNVMLVersion:   system(querier.NVMLVersion),
}

var deviceOperations = map[string]deviceOperation{
	nvidia.OpDeviceName:                   device(querier.DeviceName),
	nvidia.OpDeviceUUID:                   device(querier.DeviceUUID),
	nvidia.OpDevicePCISlot:                device(querier.DevicePCISlot),
	nvidia.OpDeviceTemperature:            device(querier.DeviceTemperature),
	nvidia.OpDeviceMemoryInfo:             device(querier.DeviceMemoryInfo),
	nvidia.OpDeviceUtilization:            device(querier.DeviceUtilization),
	nvidia.OpDevicePowerUsage:             device(querier.DevicePowerUsage),
	nvidia.OpDevicePowerLimit:             device(querier.DevicePowerLimit),
	nvidia.OpDeviceClockInfo:              device(querier.DeviceClockInfo),
	nvidia.OpDeviceMaxClockInfo:           device(querier.DeviceMaxClockInfo),
	nvidia.OpDevicePCIeLinkInfo:           device(querier.DevicePCIeLinkInfo),
	nvidia.OpDevicePCIeThroughput:         device(querier.DevicePCIeThroughput),
	nvidia.OpDeviceFanSpeed:               device(querier.DeviceFanSpeed),
	nvidia.OpDevicePerformanceState:       device(querier.DevicePerformanceState),
	nvidia.OpDeviceEncoderUtilization:     device(querier.DeviceEncoderUtilization),
	nvidia.OpDeviceDecoderUtilization:     device(querier.DeviceDecoderUtilization),
	nvidia.OpDeviceComputeProcesses:       device(querier.DeviceComputeProcesses),
	nvidia.OpDeviceGraphicsProcesses:      device(querier.DeviceGraphicsProcesses),
	nvidia.OpDeviceComputeProcessesCount:  device(querier.DeviceComputeProcessesCount),
	nvidia.OpDeviceGraphicsProcessesCount: device(querier.DeviceGraphicsProcessesCount),
	nvidia.OpDeviceECCCounters:            device(querier.DeviceECCCounters),
	nvidia.OpDeviceECCErrors:              device(querier.DeviceECCErrors),
}

func system[T any](query func(querier) (T, error)) systemOperation {
	return func(q querier) (any, error) {
		return query(q)
	}
}

func device[T any](query func(querier, uint32) (T, error)) deviceOperation {
	return func(q querier, index uint32) (any, error) {
		return query(q, index)
	}
}

// Aggregate commands.
const (
	commandSnapshot  = nvidia.OpSnapshot
	commandCollect   = "collect"
	commandInventory = "inventory"
)
