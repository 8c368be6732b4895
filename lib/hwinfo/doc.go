// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo defines the GPU inventory and status contracts that
// vendor subpackages implement, plus the sysfs helpers they share.
//
// # Contracts
//
//   - [GPUProber] enumerates static GPU identity ([schema.GPUInfo]).
//   - [GPUCollector] samples dynamic GPU metrics ([schema.GPUStatus]).
//
// [Inventory] runs a set of probers and concatenates their results.
//
// # Sysfs helpers
//
// sysfs.go reads the DRM class tree (/sys/class/drm/card*): card name
// filtering, PCI identity from the uevent file, driver identification
// from the driver symlink, hwmon thermal limits, and single-value
// attribute files. All helpers degrade to zero values on missing or
// unreadable files; a container without /sys is a valid environment.
//
// # Subpackages
//
//   - hwinfo/nvidia: the NVML telemetry facade, an NVML-backed
//     collector, and a sysfs prober enriched with NVML identity.
package hwinfo
