// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

// NewProberFrom exposes newProberFrom to the external test package.
var NewProberFrom = newProberFrom
