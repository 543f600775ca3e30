// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Named slots of an installed gateway.
const (
	NonceKey            = "nonce"
	RelayerPublicKeyKey = "relayer_pubkey"
	RelayerSchemeKey    = "relayer_scheme"
	LocalChainIDKey     = "local_chain_id"
)

// Dictionaries of an installed gateway.
const (
	SupportedChainsDict  = "supported_chains"
	ExecutedMessagesDict = "executed_messages"
	MessagesDict         = "messages"
)

const (
	namedPrefix      = "named/"
	dictionaryPrefix = "dict/"
)

var errInvalidUint64 = errors.New("invalid uint64 encoding")

// NamedKey returns the store key of a named slot.
func NamedKey(name string) []byte {
	return []byte(namedPrefix + name)
}

// DictionaryKey returns the store key of item inside dictionary dict.
func DictionaryKey(dict, item string) []byte {
	return []byte(dictionaryPrefix + dict + "/" + item)
}

// EncodeUint64 big-endian encodes v.
func EncodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// DecodeUint64 parses a value written by EncodeUint64.
func DecodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: length %d", errInvalidUint64, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// EncodeBool encodes a flag as a single byte.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeBool parses a value written by EncodeBool. Anything other than a
// single 1 byte is false.
func DecodeBool(b []byte) bool {
	return len(b) == 1 && b[0] == 1
}
