// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Session is an initialized NVML reference owned by its caller. It
// resolves device handles fresh on every query; nothing about the
// device set is cached, so a session stays correct if GPUs are lost
// or reset while it is open.
//
// A Session is safe for concurrent use. Close waits for in-flight
// queries to finish before shutting NVML down.
type Session struct {
	library Library
	logger  *slog.Logger

	// mutex is held for reading by every query and for writing by
	// Close, so NVML is never shut down under a running query.
	mutex  sync.RWMutex
	closed bool
}

// Open initializes NVML and returns a Session. The caller must Close
// it. A nil logger discards output.
func Open(library Library, logger *slog.Logger) (*Session, error) {
	return openSession(library, logger, OpInit)
}

// openSession is Open with the operation name used to label an
// initialization failure.
func openSession(library Library, logger *slog.Logger, op string) (*Session, error) {
	if logger == nil {
		logger = discardLogger()
	}
	if ret := library.Init(); ret != nvml.SUCCESS {
		return nil, newError(library, op, StageSession, systemScope, ret, "initialize NVML")
	}
	logger.Debug("nvml session opened", "op", op)
	return &Session{library: library, logger: logger}, nil
}

// Close shuts NVML down. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if ret := s.library.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("nvidia: shutting down NVML: %s", s.library.ErrorString(ret))
	}
	s.logger.Debug("nvml session closed")
	return nil
}

// Device resolves a zero-based index to a device handle. The handle is
// valid only while the session is open.
func (s *Session) Device(index uint32) (Device, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkOpen(OpDevice, int(index)); err != nil {
		return nil, err
	}
	return s.resolve(OpDevice, index)
}

// checkOpen returns a session-stage error if Close has been called.
// Callers hold s.mutex for reading.
func (s *Session) checkOpen(op string, index int) error {
	if !s.closed {
		return nil
	}
	return &Error{
		Op:      op,
		Stage:   StageSession,
		Index:   index,
		Return:  nvml.ERROR_UNINITIALIZED,
		Message: "session is closed",
	}
}

// resolve looks up the device handle for index. Callers hold s.mutex
// for reading.
func (s *Session) resolve(op string, index uint32) (Device, error) {
	device, ret := s.library.DeviceByIndex(int(index))
	if ret != nvml.SUCCESS {
		return nil, newError(s.library, op, StageDevice, int(index), ret, "get device")
	}
	return device, nil
}

// deviceField runs the resolve, read and normalize sequence shared by
// every per-device accessor. A resolution failure short-circuits
// before read is called; a read failure is labeled with field.
func deviceField[T any](s *Session, op, field string, index uint32, read func(Device) (T, nvml.Return)) (T, error) {
	var zero T

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkOpen(op, int(index)); err != nil {
		return zero, err
	}
	device, err := s.resolve(op, index)
	if err != nil {
		return zero, err
	}
	value, ret := read(device)
	if ret != nvml.SUCCESS {
		return zero, newError(s.library, op, StageField, int(index), ret, "get "+field)
	}
	return value, nil
}

// systemField is deviceField for queries that need a session but no
// device.
func systemField[T any](s *Session, op, field string, read func(Library) (T, nvml.Return)) (T, error) {
	var zero T

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkOpen(op, systemScope); err != nil {
		return zero, err
	}
	value, ret := read(s.library)
	if ret != nvml.SUCCESS {
		return zero, newError(s.library, op, StageField, systemScope, ret, "get "+field)
	}
	return value, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
