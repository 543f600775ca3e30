// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"context"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/host"
	"github.com/luxfi/gateway/precompile"
	"github.com/luxfi/geth/common"
)

var _ Submitter = (*HostSubmitter)(nil)

// Submitter delivers a signed packet to the destination gateway.
type Submitter interface {
	Submit(ctx context.Context, p *gateway.Packet) error
}

// HostSubmitter calls execute_message on a gateway contract deployed on a
// host in the same process.
type HostSubmitter struct {
	host     *host.Host
	contract common.Hash
	caller   common.Hash
}

// NewHostSubmitter submits to contract on h, calling as caller.
func NewHostSubmitter(h *host.Host, contract common.Hash, caller common.Hash) *HostSubmitter {
	return &HostSubmitter{
		host:     h,
		contract: contract,
		caller:   caller,
	}
}

func (s *HostSubmitter) Submit(ctx context.Context, p *gateway.Packet) error {
	args, err := host.EncodeArgs(&precompile.ExecuteMessageArgs{
		SrcChainID: uint32(p.SourceChainID),
		SrcGateway: p.SourceGateway,
		Receiver:   p.Receiver,
		Nonce:      p.Nonce,
		Payload:    p.Payload,
		Signature:  p.Signature,
	})
	if err != nil {
		return err
	}
	_, err = s.host.Call(ctx, &host.Call{
		Caller:     s.caller,
		Contract:   s.contract,
		EntryPoint: gateway.EntryPointExecuteMessage,
		Args:       args,
	})
	return err
}
