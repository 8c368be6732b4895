// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import "github.com/NVIDIA/go-nvml/pkg/nvml"

// DeviceECCCounters reads the aggregate (lifetime) corrected and
// uncorrected ECC counters independently. A counter the device cannot
// report is marked unsupported with a zero count; it never fails the
// call. Only session and device resolution failures are returned.
func (s *Session) DeviceECCCounters(index uint32) (ECCCounters, error) {
	return deviceField(s, OpDeviceECCCounters, "ECC errors", index, func(device Device) (ECCCounters, nvml.Return) {
		return ECCCounters{
			Corrected:   s.readECCCounter(device, index, nvml.MEMORY_ERROR_TYPE_CORRECTED),
			Uncorrected: s.readECCCounter(device, index, nvml.MEMORY_ERROR_TYPE_UNCORRECTED),
		}, nvml.SUCCESS
	})
}

// DeviceECCErrors is DeviceECCCounters collapsed to plain counts:
// (0, 0) on hardware without ECC.
func (s *Session) DeviceECCErrors(index uint32) (ECCErrors, error) {
	return deviceField(s, OpDeviceECCErrors, "ECC errors", index, func(device Device) (ECCErrors, nvml.Return) {
		counters := ECCCounters{
			Corrected:   s.readECCCounter(device, index, nvml.MEMORY_ERROR_TYPE_CORRECTED),
			Uncorrected: s.readECCCounter(device, index, nvml.MEMORY_ERROR_TYPE_UNCORRECTED),
		}
		return counters.Errors(), nvml.SUCCESS
	})
}

func (s *Session) readECCCounter(device Device, index uint32, errorType nvml.MemoryErrorType) ECCCounter {
	count, ret := device.GetTotalEccErrors(errorType, nvml.AGGREGATE_ECC)
	if ret != nvml.SUCCESS {
		s.logger.Debug("ecc counter unavailable",
			"index", index,
			"uncorrected", errorType == nvml.MEMORY_ERROR_TYPE_UNCORRECTED,
			"error", s.library.ErrorString(ret))
		return ECCCounter{}
	}
	return ECCCounter{Count: count, Supported: true}
}
