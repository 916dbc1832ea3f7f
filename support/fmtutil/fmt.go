// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers for raw recording data.
package fmtutil

import (
	"encoding/hex"
	"strings"
)

// Hex is a byte slice that renders as an indented hex dump.
//
// Each line of the dump is prefixed with a tab, so it can be nested beneath a
// summary line. An empty slice renders as an empty string.
type Hex []byte

func (h Hex) String() string {
	if len(h) == 0 {
		return ""
	}
	dump := strings.TrimSuffix(hex.Dump([]byte(h)), "\n")
	return "\t" + strings.ReplaceAll(dump, "\n", "\n\t")
}

// Octets is a byte slice that renders as space-separated hex octets, grouped
// in 32-bit words:
//
//	00ca9a3b 20a10700 2a000000
type Octets []byte

func (o Octets) String() string {
	var sb strings.Builder
	sb.Grow(len(o)*2 + len(o)/4)
	for i, b := range o {
		if i > 0 && i%4 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}
