// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"log/slog"
	"sync"

	"github.com/bureau-foundation/gputelemetry/lib/schema"
)

// Collector implements hwinfo.GPUCollector for NVIDIA GPUs. It holds
// one Session for its whole lifetime so that periodic collection does
// not pay NVML initialization on every tick.
//
// When NVML cannot be initialized (no driver, no libnvidia-ml.so) the
// Collector is still returned but Collect reports nothing; the host
// keeps its static inventory from the sysfs Prober.
type Collector struct {
	logger *slog.Logger

	mutex   sync.Mutex
	session *Session
}

// NewCollector opens an NVML session on library. Failure to open is
// logged at Info level, not returned.
func NewCollector(library Library, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = discardLogger()
	}
	session, err := Open(library, logger)
	if err != nil {
		logger.Info("nvidia collector: dynamic GPU metrics not available", "error", err)
		return &Collector{logger: logger}
	}
	return &Collector{logger: logger, session: session}
}

// Collect reads current metrics for every GPU NVML reports. A field
// that cannot be read is left at its zero value (PerformanceState at
// -1) and logged at Debug level; a device that fails to resolve is
// skipped. Returns nil when no session is held or the device count
// cannot be read.
func (c *Collector) Collect() []schema.GPUStatus {
	c.mutex.Lock()
	session := c.session
	c.mutex.Unlock()
	if session == nil {
		return nil
	}

	count, err := session.DeviceCount()
	if err != nil {
		c.logger.Warn("nvidia collector: reading device count", "error", err)
		return nil
	}

	statuses := make([]schema.GPUStatus, 0, count)
	for index := range uint32(count) {
		status, ok := c.collectDevice(session, index)
		if ok {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

func (c *Collector) collectDevice(session *Session, index uint32) (schema.GPUStatus, bool) {
	snapshot, err := session.Snapshot(index)
	if err != nil {
		c.logger.Debug("nvidia collector: skipping device", "index", index, "error", err)
		return schema.GPUStatus{}, false
	}
	for op, message := range snapshot.Errors {
		c.logger.Debug("nvidia collector: field unavailable", "index", index, "op", op, "error", message)
	}

	ecc := snapshot.ECC.Errors()
	return schema.GPUStatus{
		PCISlot:                  snapshot.PCISlot,
		Index:                    index,
		UtilizationPercent:       snapshot.Utilization.GPU,
		MemoryUtilizationPercent: snapshot.Utilization.Memory,
		VRAMUsedBytes:            snapshot.Memory.Used,
		VRAMTotalBytes:           snapshot.Memory.Total,
		TemperatureCelsius:       snapshot.TemperatureCelsius,
		PowerDrawMilliwatts:      snapshot.PowerUsageMilliwatts,
		PowerLimitMilliwatts:     snapshot.PowerLimitMilliwatts,
		GraphicsClockMHz:         snapshot.Clocks.Graphics,
		SMClockMHz:               snapshot.Clocks.SM,
		MemoryClockMHz:           snapshot.Clocks.Memory,
		FanSpeedPercent:          snapshot.FanSpeedPercent,
		PerformanceState:         snapshot.PerformanceState,
		ECCCorrected:             ecc.Corrected,
		ECCUncorrected:           ecc.Uncorrected,
		ComputeProcesses:         len(snapshot.ComputeProcesses),
		GraphicsProcesses:        len(snapshot.GraphicsProcesses),
	}, true
}

// Close shuts the held session down. Safe to call more than once.
func (c *Collector) Close() {
	c.mutex.Lock()
	session := c.session
	c.session = nil
	c.mutex.Unlock()

	if session == nil {
		return
	}
	if err := session.Close(); err != nil {
		c.logger.Warn("nvidia collector: closing session", "error", err)
	}
}
