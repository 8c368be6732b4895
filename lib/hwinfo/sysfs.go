// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PCIIdentity is the PCI identity of a device as reported by its
// sysfs uevent file.
type PCIIdentity struct {
	// Vendor is the human-readable vendor ("NVIDIA"), or "0x<id>"
	// for vendors without a mapping.
	Vendor string

	// DeviceID is the lowercase PCI device ID with a 0x prefix.
	DeviceID string

	// Slot is the PCI slot name (e.g., "0000:01:00.0").
	Slot string
}

// IsCardDevice reports whether name is a DRM card node (card0, card12)
// rather than a connector (card0-DP-1) or render node (renderD128).
func IsCardDevice(name string) bool {
	suffix, found := strings.CutPrefix(name, "card")
	if !found || suffix == "" {
		return false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

// ReadDriverName returns the kernel driver bound to the PCI device at
// devicePath: the basename of its "driver" symlink, or "" if unbound.
func ReadDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

// ReadPCIIdentity parses the uevent file under devicePath. The file
// holds KEY=VALUE lines such as:
//
//	PCI_ID=10DE:2684
//	PCI_SLOT_NAME=0000:01:00.0
//
// Missing keys leave the corresponding fields empty.
func ReadPCIIdentity(devicePath string) PCIIdentity {
	var identity PCIIdentity

	data, err := os.ReadFile(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return identity
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "PCI_ID":
			vendorID, deviceID, found := strings.Cut(value, ":")
			if !found {
				continue
			}
			identity.Vendor = PCIVendorName(strings.ToLower(vendorID))
			identity.DeviceID = "0x" + strings.ToLower(deviceID)
		case "PCI_SLOT_NAME":
			identity.Slot = value
		}
	}
	return identity
}

// PCIVendorName maps a lowercase hex PCI vendor ID to a name.
func PCIVendorName(vendorID string) string {
	switch vendorID {
	case "10de":
		return "NVIDIA"
	case "1002":
		return "AMD"
	case "8086":
		return "Intel"
	case "":
		return ""
	default:
		return fmt.Sprintf("0x%s", vendorID)
	}
}

// ReadCriticalTemperature returns the first non-zero temp1_crit value
// (millidegrees Celsius) found under devicePath/hwmon/hwmon*, or 0.
func ReadCriticalTemperature(devicePath string) int {
	hwmonBase := filepath.Join(devicePath, "hwmon")
	entries, err := os.ReadDir(hwmonBase)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		if critical := ReadSysfsInt(filepath.Join(hwmonBase, entry.Name(), "temp1_crit")); critical != 0 {
			return critical
		}
	}
	return 0
}

// ReadSysfsString returns the trimmed content of a single-value sysfs
// or procfs file, or "" on any error.
func ReadSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ReadSysfsInt parses a single-value file as a decimal int. Returns 0
// on a missing file or malformed content.
func ReadSysfsInt(path string) int {
	value, err := strconv.Atoi(ReadSysfsString(path))
	if err != nil {
		return 0
	}
	return value
}
