// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"

	"github.com/luxfi/gateway"
	"github.com/luxfi/geth/common"
)

// Dispatcher delivers admitted inbound messages by calling on_call on the
// receiver contract, with the gateway contract as caller.
func Dispatcher(h *Host, gatewayHash common.Hash) gateway.Dispatcher {
	return gateway.DispatcherFunc(func(ctx context.Context, receiver [gateway.ReceiverLen]byte, d *gateway.Delivery) error {
		args, err := EncodeArgs(&OnCallArgs{
			SourceChainID: uint32(d.SourceChainID),
			SourceGateway: d.SourceGateway,
			Payload:       d.Payload,
		})
		if err != nil {
			return err
		}
		_, err = h.Call(ctx, &Call{
			Caller:     gatewayHash,
			Contract:   common.Hash(receiver),
			EntryPoint: OnCallEntryPoint,
			Args:       args,
		})
		return err
	})
}
