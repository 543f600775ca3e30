// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"encoding/hex"
	"strings"
)

// SanitizeHexString strips an optional 0x prefix.
func SanitizeHexString(hex string) string {
	hex = strings.TrimPrefix(hex, "0x")
	return strings.TrimPrefix(hex, "0X")
}

// DecodeHexString decodes hex with or without a 0x prefix.
func DecodeHexString(s string) ([]byte, error) {
	return hex.DecodeString(SanitizeHexString(s))
}

// EncodeHexString renders b as 0x-prefixed lowercase hex.
func EncodeHexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
