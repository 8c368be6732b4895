// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package nvidia reads NVIDIA GPU telemetry through NVML
// (libnvidia-ml.so), loaded with go-nvml's dlopen binding so no cgo
// toolchain is needed at build time.
//
// Three layers are exposed:
//
//   - [Session] is a caller-owned NVML initialization. Its accessors
//     resolve the device index fresh on every call and return either
//     a value or an [*Error].
//   - [Telemetry] is the per-call facade: each method opens a Session,
//     performs one query, and closes it. NVML is never left
//     initialized between calls.
//   - [Prober] and [Collector] implement hwinfo.GPUProber and
//     hwinfo.GPUCollector on top of a Session, joining NVML data with
//     sysfs inventory by PCI slot.
//
// Every failure is classified into one of three stages: the session
// could not be initialized ([ErrSessionInitFailed]), the index did not
// resolve to a device ([ErrDeviceNotFound]), or the device resolved
// but the field read failed ([ErrFieldUnavailable]). ECC counters are
// the exception: unsupported counters read as zero rather than
// failing, because most consumer boards have no ECC memory.
//
// Tests substitute the in-memory Library from the nvidiatest package.
package nvidia
