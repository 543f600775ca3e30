// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"fmt"

	"github.com/luxfi/geth/rlp"
)

// OnCallEntryPoint is the entry point every recipient contract exposes.
const OnCallEntryPoint = "on_call"

// OnCallArgs are the arguments of on_call.
type OnCallArgs struct {
	SourceChainID uint32
	SourceGateway []byte
	Payload       []byte
}

// EncodeArgs RLP encodes entry point arguments.
func EncodeArgs(args interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(args)
}

// DecodeArgs RLP decodes entry point arguments into args.
func DecodeArgs(b []byte, args interface{}) error {
	if err := rlp.DecodeBytes(b, args); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}
