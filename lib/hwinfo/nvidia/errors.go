// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"errors"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Stage identifies which step of an operation failed.
type Stage string

const (
	// StageSession means NVML could not be initialized, or the
	// session was already closed.
	StageSession Stage = "session_init"

	// StageDevice means the device index could not be resolved to a
	// handle: out of range, lost, or inaccessible.
	StageDevice Stage = "device_resolution"

	// StageField means the device resolved but the field read failed.
	StageField Stage = "field_retrieval"
)

// Sentinels for errors.Is. Every *Error matches exactly one of them,
// selected by its Stage.
var (
	ErrSessionInitFailed = errors.New("nvidia: session initialization failed")
	ErrDeviceNotFound    = errors.New("nvidia: device not found")
	ErrFieldUnavailable  = errors.New("nvidia: field unavailable")
)

// systemScope is the Index of errors from operations that take no
// device index.
const systemScope = -1

// Error is the single failure type returned by the facade. Callers
// branch on the stage with errors.Is and read details with errors.As:
//
//	var nvidiaErr *nvidia.Error
//	if errors.As(err, &nvidiaErr) && nvidiaErr.Return == nvml.ERROR_GPU_IS_LOST { ... }
type Error struct {
	// Op is the operation name (e.g., "device_temperature").
	Op string

	// Stage is the step that failed.
	Stage Stage

	// Index is the requested device index, or -1 for system-scope
	// operations.
	Index int

	// Return is the NVML return code behind the failure.
	Return nvml.Return

	// Message is the field-specific description including NVML's
	// error text (e.g., "failed to get temperature: Not Supported").
	Message string
}

func (e *Error) Error() string {
	if e.Index == systemScope {
		return fmt.Sprintf("nvidia: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("nvidia: %s (device %d): %s", e.Op, e.Index, e.Message)
}

// Is matches the stage sentinel for this error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSessionInitFailed:
		return e.Stage == StageSession
	case ErrDeviceNotFound:
		return e.Stage == StageDevice
	case ErrFieldUnavailable:
		return e.Stage == StageField
	}
	return false
}

// IsUnsupported reports whether err is a facade error caused by NVML
// reporting the query as not supported on this device.
func IsUnsupported(err error) bool {
	var nvidiaErr *Error
	return errors.As(err, &nvidiaErr) && nvidiaErr.Return == nvml.ERROR_NOT_SUPPORTED
}

// newError builds an *Error whose message reads "failed to <action>:
// <NVML error text>".
func newError(library Library, op string, stage Stage, index int, ret nvml.Return, action string) *Error {
	return &Error{
		Op:      op,
		Stage:   stage,
		Index:   index,
		Return:  ret,
		Message: fmt.Sprintf("failed to %s: %s", action, library.ErrorString(ret)),
	}
}
