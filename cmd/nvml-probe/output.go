// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gputelemetry/lib/codec"
	"github.com/bureau-foundation/gputelemetry/lib/config"
)

// render writes value to w in format.
func render(w io.Writer, format string, value any) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case config.FormatCBOR:
		return codec.NewEncoder(w).Encode(value)
	case config.FormatText:
		return renderText(w, value)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// renderText prints scalars bare. Structures go through JSON first so
// the YAML keys are the json tag names rather than yaml.v3's lowercased
// Go field names.
func renderText(w io.Writer, value any) error {
	switch value.(type) {
	case string, int, uint32, uint64:
		_, err := fmt.Fprintln(w, value)
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return err
	}
	return encoder.Close()
}
