// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package precompile

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/host"
	"github.com/luxfi/gateway/storage"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
)

// GatewayName is the name the gateway contract is deployed under.
const GatewayName = "knotx_gateway"

var (
	ErrReadOnly         = errors.New("cannot modify gateway state in read-only mode")
	ErrValueNotAccepted = errors.New("gateway does not accept value")
)

var _ host.Contract = (*GatewayModule)(nil)

type SendMessageArgs struct {
	DstChainID uint32
	Receiver   []byte
	Payload    []byte
}

type ExecuteMessageArgs struct {
	SrcChainID uint32
	SrcGateway []byte
	Receiver   []byte
	Nonce      uint64
	Payload    []byte
	Signature  []byte
}

type SetSupportedChainArgs struct {
	ChainID   uint32
	Supported bool
}

type ChainArgs struct {
	ChainID uint32
}

type KeyArgs struct {
	Key string
}

// GatewayModule exposes a gateway as a host contract.
type GatewayModule struct {
	gateway *gateway.Gateway
}

// NewGatewayModule creates a new gateway module
func NewGatewayModule(g *gateway.Gateway) *GatewayModule {
	return &GatewayModule{gateway: g}
}

// Deploy installs a gateway into store and deploys it on h under name.
// Inbound messages are delivered to contracts on the same host.
func Deploy(
	ctx context.Context,
	h *host.Host,
	name string,
	store storage.Store,
	cfg gateway.Config,
	opts ...gateway.Option,
) (*gateway.Gateway, common.Hash, error) {
	hash := host.ContractHash(name)
	opts = append(opts, gateway.WithDispatcher(host.Dispatcher(h, hash)))
	g, err := gateway.Install(ctx, store, cfg, opts...)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return deploy(h, name, g)
}

// Attach deploys a gateway previously installed into store.
func Attach(
	ctx context.Context,
	h *host.Host,
	name string,
	store storage.Store,
	opts ...gateway.Option,
) (*gateway.Gateway, common.Hash, error) {
	hash := host.ContractHash(name)
	opts = append(opts, gateway.WithDispatcher(host.Dispatcher(h, hash)))
	g, err := gateway.Open(ctx, store, opts...)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return deploy(h, name, g)
}

func deploy(h *host.Host, name string, g *gateway.Gateway) (*gateway.Gateway, common.Hash, error) {
	hash, err := h.Deploy(name, NewGatewayModule(g))
	if err != nil {
		return nil, common.Hash{}, err
	}
	return g, hash, nil
}

// AddressToCaller widens a 20-byte account address to a caller identity.
func AddressToCaller(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func checkMutation(value *uint256.Int, readOnly bool) error {
	if readOnly {
		return ErrReadOnly
	}
	if value != nil && !value.IsZero() {
		return fmt.Errorf("%w: %s", ErrValueNotAccepted, value.Dec())
	}
	return nil
}

// SendMessage sequences an outbound message from caller.
func (m *GatewayModule) SendMessage(
	ctx context.Context,
	args *SendMessageArgs,
	caller common.Hash,
	value *uint256.Int,
	readOnly bool,
) ([]byte, error) {
	if err := checkMutation(value, readOnly); err != nil {
		return nil, err
	}
	return m.gateway.SendMessage(ctx, caller.Bytes(), gateway.ChainID(args.DstChainID), args.Receiver, args.Payload)
}

// ExecuteMessage admits and delivers a relayed inbound message.
func (m *GatewayModule) ExecuteMessage(
	ctx context.Context,
	args *ExecuteMessageArgs,
	_ common.Hash,
	value *uint256.Int,
	readOnly bool,
) error {
	if err := checkMutation(value, readOnly); err != nil {
		return err
	}
	return m.gateway.ExecuteMessage(
		ctx,
		gateway.ChainID(args.SrcChainID),
		args.SrcGateway,
		args.Receiver,
		args.Nonce,
		args.Payload,
		args.Signature,
	)
}

// SetSupportedChain updates the allow-list on behalf of caller.
func (m *GatewayModule) SetSupportedChain(
	ctx context.Context,
	args *SetSupportedChainArgs,
	caller common.Hash,
	value *uint256.Int,
	readOnly bool,
) error {
	if err := checkMutation(value, readOnly); err != nil {
		return err
	}
	return m.gateway.SetSupportedChain(ctx, caller.Bytes(), gateway.ChainID(args.ChainID), args.Supported)
}

// Call routes a host call to the matching entry point. Results are RLP
// encoded; entry points without a result return nil.
func (m *GatewayModule) Call(ctx context.Context, _ *host.Host, call *host.Call) ([]byte, error) {
	switch call.EntryPoint {
	case gateway.EntryPointSendMessage:
		var args SendMessageArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		return m.SendMessage(ctx, &args, call.Caller, call.Value, call.ReadOnly)
	case gateway.EntryPointExecuteMessage:
		var args ExecuteMessageArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		return nil, m.ExecuteMessage(ctx, &args, call.Caller, call.Value, call.ReadOnly)
	case gateway.EntryPointSetSupportedChain:
		var args SetSupportedChainArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		return nil, m.SetSupportedChain(ctx, &args, call.Caller, call.Value, call.ReadOnly)
	case EntryPointNonce:
		nonce, err := m.gateway.Nonce(ctx)
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes(nonce)
	case EntryPointIsSupported:
		var args ChainArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		supported, err := m.gateway.IsSupported(ctx, gateway.ChainID(args.ChainID))
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes(supported)
	case EntryPointGetMessage:
		var args KeyArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		return m.gateway.Message(ctx, args.Key)
	case EntryPointIsExecuted:
		var args KeyArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		executed, err := m.gateway.IsExecuted(ctx, args.Key)
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes(executed)
	case EntryPointRelayerPublicKey:
		return m.gateway.RelayerPublicKey(), nil
	default:
		return nil, fmt.Errorf("%w: %s", host.ErrUnknownEntryPoint, call.EntryPoint)
	}
}
