// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

// Snapshot is every per-device reading for one GPU, taken under a
// single session. A field that could not be read holds its zero value
// and has an entry in Errors keyed by operation name.
type Snapshot struct {
	Index uint32 `json:"index"`

	Name    string `json:"name"`
	UUID    string `json:"uuid"`
	PCISlot string `json:"pci_slot"`

	TemperatureCelsius uint32      `json:"temperature_celsius"`
	Memory             MemoryInfo  `json:"memory"`
	Utilization        Utilization `json:"utilization"`

	PowerUsageMilliwatts uint32 `json:"power_usage_milliwatts"`
	PowerLimitMilliwatts uint32 `json:"power_limit_milliwatts"`

	Clocks    ClockInfo `json:"clocks"`
	MaxClocks ClockInfo `json:"max_clocks"`

	PCIeLink       PCIeLink       `json:"pcie_link"`
	PCIeThroughput PCIeThroughput `json:"pcie_throughput"`

	FanSpeedPercent uint32 `json:"fan_speed_percent"`

	// PerformanceState is -1 when the P-state could not be read.
	PerformanceState int `json:"performance_state"`

	Encoder CodecUtilization `json:"encoder"`
	Decoder CodecUtilization `json:"decoder"`

	ComputeProcesses  []Process `json:"compute_processes"`
	GraphicsProcesses []Process `json:"graphics_processes"`

	ECC ECCCounters `json:"ecc"`

	// Errors maps operation name to error text for each field that
	// failed. Nil when every field was read.
	Errors map[string]string `json:"errors,omitempty"`
}

// Snapshot reads every per-device field of the GPU at index. Device
// resolution failure is returned as an error; individual field
// failures are recorded in Snapshot.Errors instead.
func (s *Session) Snapshot(index uint32) (Snapshot, error) {
	if err := s.resolveOnce(OpSnapshot, index); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{Index: index, PerformanceState: -1}
	record := func(op string, err error) {
		if err == nil {
			return
		}
		if snapshot.Errors == nil {
			snapshot.Errors = make(map[string]string)
		}
		snapshot.Errors[op] = err.Error()
	}

	capture(s, OpDeviceName, index, (*Session).DeviceName, &snapshot.Name, record)
	capture(s, OpDeviceUUID, index, (*Session).DeviceUUID, &snapshot.UUID, record)
	capture(s, OpDevicePCISlot, index, (*Session).DevicePCISlot, &snapshot.PCISlot, record)
	capture(s, OpDeviceTemperature, index, (*Session).DeviceTemperature, &snapshot.TemperatureCelsius, record)
	capture(s, OpDeviceMemoryInfo, index, (*Session).DeviceMemoryInfo, &snapshot.Memory, record)
	capture(s, OpDeviceUtilization, index, (*Session).DeviceUtilization, &snapshot.Utilization, record)
	capture(s, OpDevicePowerUsage, index, (*Session).DevicePowerUsage, &snapshot.PowerUsageMilliwatts, record)
	capture(s, OpDevicePowerLimit, index, (*Session).DevicePowerLimit, &snapshot.PowerLimitMilliwatts, record)
	capture(s, OpDeviceClockInfo, index, (*Session).DeviceClockInfo, &snapshot.Clocks, record)
	capture(s, OpDeviceMaxClockInfo, index, (*Session).DeviceMaxClockInfo, &snapshot.MaxClocks, record)
	capture(s, OpDevicePCIeLinkInfo, index, (*Session).DevicePCIeLinkInfo, &snapshot.PCIeLink, record)
	capture(s, OpDevicePCIeThroughput, index, (*Session).DevicePCIeThroughput, &snapshot.PCIeThroughput, record)
	capture(s, OpDeviceFanSpeed, index, (*Session).DeviceFanSpeed, &snapshot.FanSpeedPercent, record)
	capture(s, OpDevicePerformanceState, index, (*Session).DevicePerformanceState, &snapshot.PerformanceState, record)
	capture(s, OpDeviceEncoderUtilization, index, (*Session).DeviceEncoderUtilization, &snapshot.Encoder, record)
	capture(s, OpDeviceDecoderUtilization, index, (*Session).DeviceDecoderUtilization, &snapshot.Decoder, record)
	capture(s, OpDeviceComputeProcesses, index, (*Session).DeviceComputeProcesses, &snapshot.ComputeProcesses, record)
	capture(s, OpDeviceGraphicsProcesses, index, (*Session).DeviceGraphicsProcesses, &snapshot.GraphicsProcesses, record)
	capture(s, OpDeviceECCCounters, index, (*Session).DeviceECCCounters, &snapshot.ECC, record)

	return snapshot, nil
}

// resolveOnce checks that index resolves, labeling failures with op.
func (s *Session) resolveOnce(op string, index uint32) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkOpen(op, int(index)); err != nil {
		return err
	}
	_, err := s.resolve(op, index)
	return err
}

// capture stores a successful reading in target, leaving target
// untouched on failure so sentinel defaults survive.
func capture[T any](s *Session, op string, index uint32, accessor func(*Session, uint32) (T, error), target *T, record func(string, error)) {
	value, err := accessor(s, index)
	if err != nil {
		record(op, err)
		return
	}
	*target = value
}
