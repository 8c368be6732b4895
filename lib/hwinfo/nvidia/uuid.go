// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseUUID parses an NVIDIA device UUID as reported by NVML or
// /proc/driver/nvidia ("GPU-<uuid>" or "MIG-<uuid>"). The prefix is
// optional. Comparing parsed values avoids false mismatches from case
// differences between sources.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	for _, prefix := range []string{"GPU-", "MIG-"} {
		if rest, found := strings.CutPrefix(trimmed, prefix); found {
			trimmed = rest
			break
		}
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("nvidia: parsing device UUID %q: %w", value, err)
	}
	return parsed, nil
}

// SameUUID reports whether a and b name the same device. Unparseable
// values never match.
func SameUUID(a, b string) bool {
	parsedA, err := ParseUUID(a)
	if err != nil {
		return false
	}
	parsedB, err := ParseUUID(b)
	if err != nil {
		return false
	}
	return parsedA == parsedB
}
