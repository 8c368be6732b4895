// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/gputelemetry/lib/hwinfo"
	"github.com/bureau-foundation/gputelemetry/lib/schema"
)

// Prober implements hwinfo.GPUProber for NVIDIA GPUs driven by either
// the proprietary nvidia driver or nouveau. Cards are found by walking
// /sys/class/drm/card*; proprietary-driver cards are enriched from
// /proc/driver/nvidia/gpus/<slot>/information and then from NVML,
// matched by PCI slot.
type Prober struct {
	// sysRoot and procRoot default to "/sys" and "/proc"; tests point
	// them at synthetic trees.
	sysRoot  string
	procRoot string

	// telemetry is nil when NVML enrichment is disabled.
	telemetry *Telemetry
	logger    *slog.Logger
}

// NewProber creates a Prober over the real /sys and /proc. A nil
// telemetry skips NVML enrichment.
func NewProber(telemetry *Telemetry, logger *slog.Logger) *Prober {
	return newProberFrom("/sys", "/proc", telemetry, logger)
}

func newProberFrom(sysRoot, procRoot string, telemetry *Telemetry, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = discardLogger()
	}
	return &Prober{sysRoot: sysRoot, procRoot: procRoot, telemetry: telemetry, logger: logger}
}

// Enumerate returns static information for every NVIDIA GPU on the
// system, or nil when there are none.
func (p *Prober) Enumerate() []schema.GPUInfo {
	drmBase := filepath.Join(p.sysRoot, "class/drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		return nil
	}

	var gpus []schema.GPUInfo
	for _, entry := range entries {
		name := entry.Name()
		if !hwinfo.IsCardDevice(name) {
			continue
		}

		devicePath := filepath.Join(drmBase, name, "device")
		driver := hwinfo.ReadDriverName(devicePath)
		if driver != "nvidia" && driver != "nouveau" {
			continue
		}

		gpu := readGPUInfo(devicePath, driver)
		if driver == "nvidia" && gpu.PCISlot != "" {
			p.enrichFromProc(&gpu)
		}
		gpus = append(gpus, gpu)
	}

	if len(gpus) > 0 && p.telemetry != nil {
		p.enrichFromNVML(gpus)
	}
	return gpus
}

func readGPUInfo(devicePath, driver string) schema.GPUInfo {
	identity := hwinfo.ReadPCIIdentity(devicePath)
	return schema.GPUInfo{
		Vendor:                           identity.Vendor,
		PCIDeviceID:                      identity.DeviceID,
		PCISlot:                          identity.Slot,
		NVMLIndex:                        -1,
		PCIeLinkWidth:                    hwinfo.ReadSysfsInt(filepath.Join(devicePath, "current_link_width")),
		ThermalLimitCriticalMillidegrees: hwinfo.ReadCriticalTemperature(devicePath),
		Driver:                           driver,
	}
}

// enrichFromProc reads the proprietary driver's per-GPU information
// file, which holds lines like:
//
//	Model:           NVIDIA GeForce RTX 4090
//	GPU UUID:        GPU-xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
//	Video BIOS:      95.02.3c.80.b8
func (p *Prober) enrichFromProc(gpu *schema.GPUInfo) {
	infoPath := filepath.Join(p.procRoot, "driver/nvidia/gpus", gpu.PCISlot, "information")
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Model":
			gpu.ModelName = value
		case "GPU UUID":
			gpu.UUID = value
		case "Video BIOS":
			gpu.VBIOSVersion = value
		}
	}
}

// enrichFromNVML fills NVML-only fields under one session. Each NVML
// device is matched to a sysfs entry by PCI slot, falling back to the
// UUID read from /proc. NVML failure leaves the sysfs data as is.
func (p *Prober) enrichFromNVML(gpus []schema.GPUInfo) {
	session, err := p.telemetry.Open()
	if err != nil {
		p.logger.Debug("nvidia prober: NVML enrichment unavailable", "error", err)
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			p.logger.Warn("nvidia prober: closing NVML session", "error", err)
		}
	}()

	count, err := session.DeviceCount()
	if err != nil {
		p.logger.Debug("nvidia prober: reading device count", "error", err)
		return
	}

	for index := range uint32(count) {
		slot, slotErr := session.DevicePCISlot(index)
		deviceUUID, uuidErr := session.DeviceUUID(index)
		if slotErr != nil && uuidErr != nil {
			p.logger.Debug("nvidia prober: cannot identify device", "index", index, "error", slotErr)
			continue
		}

		gpu := matchGPU(gpus, slot, deviceUUID)
		if gpu == nil {
			p.logger.Debug("nvidia prober: NVML device has no sysfs entry", "index", index, "pci_slot", slot)
			continue
		}
		p.applyNVML(session, index, gpu, deviceUUID)
	}
}

func (p *Prober) applyNVML(session *Session, index uint32, gpu *schema.GPUInfo, deviceUUID string) {
	gpu.NVMLIndex = int(index)
	if deviceUUID != "" {
		gpu.UUID = deviceUUID
	}
	if name, err := session.DeviceName(index); err == nil {
		gpu.ModelName = name
	}
	if memory, err := session.DeviceMemoryInfo(index); err == nil {
		gpu.VRAMTotalBytes = memory.Total
	}
	if link, err := session.DevicePCIeLinkInfo(index); err == nil {
		gpu.PCIeGeneration = link.Generation
		gpu.PCIeLinkWidth = link.Width
	}
}

// matchGPU finds the sysfs entry for an NVML device. PCI slot is
// authoritative; UUID is the fallback for entries /proc identified.
func matchGPU(gpus []schema.GPUInfo, slot, deviceUUID string) *schema.GPUInfo {
	if slot != "" {
		for i := range gpus {
			if strings.EqualFold(gpus[i].PCISlot, slot) {
				return &gpus[i]
			}
		}
	}
	if deviceUUID != "" {
		for i := range gpus {
			if gpus[i].UUID != "" && SameUUID(gpus[i].UUID, deviceUUID) {
				return &gpus[i]
			}
		}
	}
	return nil
}
