// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/gputelemetry/lib/schema"
)

// writeSyntheticFile creates a file at path within root, creating
// parent directories as needed.
func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func TestIsCardDevice(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"card0", true},
		{"card12", true},
		{"card", false},
		{"card0-DP-1", false},
		{"card0-HDMI-A-1", false},
		{"renderD128", false},
		{"version", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCardDevice(test.name); got != test.want {
				t.Errorf("IsCardDevice(%q) = %v, want %v", test.name, got, test.want)
			}
		})
	}
}

func TestReadPCIIdentity(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "device/uevent",
		"DRIVER=nvidia\nPCI_CLASS=30000\nPCI_ID=10DE:2684\nPCI_SUBSYS_ID=10DE:16A1\nPCI_SLOT_NAME=0000:01:00.0\n")

	identity := ReadPCIIdentity(filepath.Join(root, "device"))
	want := PCIIdentity{Vendor: "NVIDIA", DeviceID: "0x2684", Slot: "0000:01:00.0"}
	if identity != want {
		t.Errorf("ReadPCIIdentity() = %+v, want %+v", identity, want)
	}
}

func TestReadPCIIdentityMissingFile(t *testing.T) {
	identity := ReadPCIIdentity(filepath.Join(t.TempDir(), "absent"))
	if identity != (PCIIdentity{}) {
		t.Errorf("ReadPCIIdentity() = %+v, want zero value", identity)
	}
}

func TestPCIVendorName(t *testing.T) {
	tests := map[string]string{
		"10de": "NVIDIA",
		"1002": "AMD",
		"8086": "Intel",
		"1af4": "0x1af4",
		"":     "",
	}
	for vendorID, want := range tests {
		if got := PCIVendorName(vendorID); got != want {
			t.Errorf("PCIVendorName(%q) = %q, want %q", vendorID, got, want)
		}
	}
}

func TestReadDriverName(t *testing.T) {
	root := t.TempDir()
	driverDir := filepath.Join(root, "bus/pci/drivers/nouveau")
	if err := os.MkdirAll(driverDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	deviceDir := filepath.Join(root, "device")
	if err := os.MkdirAll(deviceDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(driverDir, filepath.Join(deviceDir, "driver")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if got := ReadDriverName(deviceDir); got != "nouveau" {
		t.Errorf("ReadDriverName() = %q, want nouveau", got)
	}
	if got := ReadDriverName(root); got != "" {
		t.Errorf("ReadDriverName(no symlink) = %q, want empty", got)
	}
}

func TestReadCriticalTemperature(t *testing.T) {
	root := t.TempDir()
	// hwmon0 has no crit file; hwmon1 does.
	writeSyntheticFile(t, root, "device/hwmon/hwmon0/name", "acpitz\n")
	writeSyntheticFile(t, root, "device/hwmon/hwmon1/temp1_crit", "97000\n")

	if got := ReadCriticalTemperature(filepath.Join(root, "device")); got != 97000 {
		t.Errorf("ReadCriticalTemperature() = %d, want 97000", got)
	}
	if got := ReadCriticalTemperature(filepath.Join(root, "absent")); got != 0 {
		t.Errorf("ReadCriticalTemperature(absent) = %d, want 0", got)
	}
}

func TestReadSysfsInt(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "width", "16\n")
	writeSyntheticFile(t, root, "garbage", "x16\n")

	if got := ReadSysfsInt(filepath.Join(root, "width")); got != 16 {
		t.Errorf("ReadSysfsInt(width) = %d, want 16", got)
	}
	if got := ReadSysfsInt(filepath.Join(root, "garbage")); got != 0 {
		t.Errorf("ReadSysfsInt(garbage) = %d, want 0", got)
	}
	if got := ReadSysfsInt(filepath.Join(root, "absent")); got != 0 {
		t.Errorf("ReadSysfsInt(absent) = %d, want 0", got)
	}
}

type stubProber struct {
	gpus []schema.GPUInfo
}

func (s stubProber) Enumerate() []schema.GPUInfo { return s.gpus }

func TestInventoryConcatenatesProbers(t *testing.T) {
	first := stubProber{gpus: []schema.GPUInfo{{PCISlot: "0000:01:00.0"}}}
	empty := stubProber{}
	second := stubProber{gpus: []schema.GPUInfo{{PCISlot: "0000:41:00.0"}, {PCISlot: "0000:81:00.0"}}}

	gpus := Inventory(first, empty, second)
	if len(gpus) != 3 {
		t.Fatalf("Inventory() returned %d GPUs, want 3", len(gpus))
	}
	if gpus[0].PCISlot != "0000:01:00.0" || gpus[2].PCISlot != "0000:81:00.0" {
		t.Errorf("Inventory() order = %v, want prober order preserved", gpus)
	}
	if Inventory() != nil {
		t.Error("Inventory() with no probers should be nil")
	}
}
