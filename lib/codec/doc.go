// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// GPU readings leave the process in one of two encodings: JSON for
// people and scripts, CBOR for compact machine consumption (collector
// pipelines, fixtures). Every type that crosses that boundary carries
// only `json` struct tags. fxamacker/cbor v2 falls back to `json` tags
// when `cbor` tags are absent, so one tag controls field naming and
// omitempty for both formats. Never add `cbor` tags alongside them.
//
// The encoder uses Core Deterministic Encoding: the same reading
// always produces identical bytes, which keeps golden fixtures stable.
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// Multiple records are written as a CBOR sequence:
//
//	encoder := codec.NewEncoder(os.Stdout)
//	for _, snapshot := range snapshots {
//		if err := encoder.Encode(snapshot); err != nil { ... }
//	}
package codec
