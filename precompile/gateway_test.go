// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package precompile

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/host"
	"github.com/luxfi/gateway/receiver"
	"github.com/luxfi/gateway/storage"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	host        *host.Host
	gateway     *gateway.Gateway
	gatewayHash common.Hash
	counter     *receiver.Counter
	counterHash common.Hash
	relayer     signature.Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	relayer, err := signature.GenerateSecp256k1Signer()
	require.NoError(err)

	h := host.New(zap.NewNop())
	g, gatewayHash, err := Deploy(ctx, h, GatewayName, storage.NewMemStore(), gateway.Config{
		LocalChainID:     3,
		RelayerPublicKey: relayer.PublicKey(),
	})
	require.NoError(err)

	counter := receiver.NewCounter()
	counterHash, err := h.Deploy(receiver.CounterName, counter)
	require.NoError(err)

	return &fixture{
		host:        h,
		gateway:     g,
		gatewayHash: gatewayHash,
		counter:     counter,
		counterHash: counterHash,
		relayer:     relayer,
	}
}

func (f *fixture) call(t *testing.T, caller common.Hash, entryPoint string, args interface{}) ([]byte, error) {
	t.Helper()
	var encoded []byte
	if args != nil {
		var err error
		encoded, err = host.EncodeArgs(args)
		require.NoError(t, err)
	}
	return f.host.Call(context.Background(), &host.Call{
		Caller:     caller,
		Contract:   f.gatewayHash,
		EntryPoint: entryPoint,
		Args:       encoded,
	})
}

func TestSendMessageThroughHost(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	caller := common.BytesToHash(bytes.Repeat([]byte{0xca}, 32))

	_, err := f.call(t, caller, gateway.EntryPointSetSupportedChain, &SetSupportedChainArgs{ChainID: 1, Supported: true})
	require.NoError(err)

	out, err := f.call(t, caller, gateway.EntryPointSendMessage, &SendMessageArgs{
		DstChainID: 1,
		Receiver:   make([]byte, 32),
		Payload:    []byte{1},
	})
	require.NoError(err)

	msg, err := gateway.ParseMessage(out, gateway.IdentityLen, gateway.ReceiverLen)
	require.NoError(err)
	require.Equal(gateway.ChainID(3), msg.SourceChainID)
	require.Equal(caller.Bytes(), msg.Sender)

	nonceBytes, err := f.call(t, caller, EntryPointNonce, nil)
	require.NoError(err)
	var nonce uint64
	require.NoError(rlp.DecodeBytes(nonceBytes, &nonce))
	require.Equal(uint64(1), nonce)

	archived, err := f.call(t, caller, EntryPointGetMessage, &KeyArgs{Key: gateway.MessageKey(out)})
	require.NoError(err)
	require.Equal(out, archived)
}

func TestExecuteMessageThroughHost(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	srcGateway := bytes.Repeat([]byte{0x5e}, 32)
	msg := gateway.NewMessage(1, 3, srcGateway, f.counterHash.Bytes(), 0, []byte("hello"))
	sig, err := f.relayer.Sign(msg.Bytes())
	require.NoError(err)

	args := &ExecuteMessageArgs{
		SrcChainID: 1,
		SrcGateway: srcGateway,
		Receiver:   f.counterHash.Bytes(),
		Nonce:      0,
		Payload:    []byte("hello"),
		Signature:  sig,
	}
	relayerID := common.BytesToHash([]byte("relayer"))
	_, err = f.call(t, relayerID, gateway.EntryPointExecuteMessage, args)
	require.NoError(err)

	deliveries := f.counter.Deliveries()
	require.Len(deliveries, 1)
	require.Equal(f.gatewayHash, deliveries[0].Caller)
	require.Equal(uint32(1), deliveries[0].SourceChainID)
	require.Equal(srcGateway, deliveries[0].SourceGateway)
	require.Equal([]byte("hello"), deliveries[0].Payload)

	_, err = f.call(t, relayerID, gateway.EntryPointExecuteMessage, args)
	require.ErrorIs(err, gateway.ErrAlreadyExecuted)
	require.Equal(uint64(1), f.counter.Count())

	executed, err := f.call(t, relayerID, EntryPointIsExecuted, &KeyArgs{Key: msg.Key()})
	require.NoError(err)
	var ok bool
	require.NoError(rlp.DecodeBytes(executed, &ok))
	require.True(ok)
}

func TestExecuteMessageUnknownRecipient(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	unknown := bytes.Repeat([]byte{0x77}, 32)
	msg := gateway.NewMessage(1, 3, []byte("gw"), unknown, 0, nil)
	sig, err := f.relayer.Sign(msg.Bytes())
	require.NoError(err)

	_, err = f.call(t, common.Hash{}, gateway.EntryPointExecuteMessage, &ExecuteMessageArgs{
		SrcChainID: 1,
		SrcGateway: []byte("gw"),
		Receiver:   unknown,
		Signature:  sig,
	})
	require.ErrorIs(err, host.ErrUnknownContract)

	executed, err := f.gateway.IsExecuted(context.Background(), msg.Key())
	require.NoError(err)
	require.True(executed)
}

func TestExecuteMessageRevertingRecipient(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	revertHash, err := f.host.Deploy("reverter", &receiver.Reverter{})
	require.NoError(err)

	msg := gateway.NewMessage(1, 3, []byte("gw"), revertHash.Bytes(), 0, nil)
	sig, err := f.relayer.Sign(msg.Bytes())
	require.NoError(err)

	_, err = f.call(t, common.Hash{}, gateway.EntryPointExecuteMessage, &ExecuteMessageArgs{
		SrcChainID: 1,
		SrcGateway: []byte("gw"),
		Receiver:   revertHash.Bytes(),
		Signature:  sig,
	})
	require.ErrorIs(err, receiver.ErrReverted)
	require.ErrorIs(err, gateway.ErrDispatchFailed)
}

func TestReentrantRecipient(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	_, err := f.call(t, common.Hash{}, gateway.EntryPointSetSupportedChain, &SetSupportedChainArgs{ChainID: 1, Supported: true})
	require.NoError(err)

	var (
		sendErr error
		nonce   uint64
	)
	replyHash, err := f.host.Deploy("replier", host.ContractFunc(func(ctx context.Context, h *host.Host, call *host.Call) ([]byte, error) {
		args, err := host.EncodeArgs(&SendMessageArgs{DstChainID: 1, Receiver: make([]byte, 32), Payload: []byte("pong")})
		if err != nil {
			return nil, err
		}
		_, sendErr = h.Call(ctx, &host.Call{
			Caller:     host.ContractHash("replier"),
			Contract:   f.gatewayHash,
			EntryPoint: gateway.EntryPointSendMessage,
			Args:       args,
		})
		out, err := h.Call(ctx, &host.Call{
			Caller:     host.ContractHash("replier"),
			Contract:   f.gatewayHash,
			EntryPoint: EntryPointNonce,
			ReadOnly:   true,
		})
		if err != nil {
			return nil, err
		}
		return nil, rlp.DecodeBytes(out, &nonce)
	}))
	require.NoError(err)

	msg := gateway.NewMessage(1, 3, []byte("gw"), replyHash.Bytes(), 0, []byte("ping"))
	sig, err := f.relayer.Sign(msg.Bytes())
	require.NoError(err)

	done := make(chan error, 1)
	go func() {
		_, err := f.call(t, common.Hash{}, gateway.EntryPointExecuteMessage, &ExecuteMessageArgs{
			SrcChainID: 1,
			SrcGateway: []byte("gw"),
			Receiver:   replyHash.Bytes(),
			Payload:    []byte("ping"),
			Signature:  sig,
		})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(err)
	case <-time.After(5 * time.Second):
		require.FailNow("execute_message did not return")
	}
	require.ErrorIs(sendErr, gateway.ErrReentrantCall)
	require.Zero(nonce)

	// the host and the gateway stay usable
	_, err = f.call(t, common.Hash{}, gateway.EntryPointSendMessage, &SendMessageArgs{DstChainID: 1, Receiver: make([]byte, 32)})
	require.NoError(err)
	n, err := f.gateway.Nonce(context.Background())
	require.NoError(err)
	require.Equal(uint64(1), n)
}

func TestMutationGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	module := NewGatewayModule(f.gateway)

	tests := []struct {
		name        string
		value       *uint256.Int
		readOnly    bool
		expectedErr error
	}{
		{
			name:        "read only",
			readOnly:    true,
			expectedErr: ErrReadOnly,
		},
		{
			name:        "value attached",
			value:       uint256.NewInt(1),
			expectedErr: ErrValueNotAccepted,
		},
		{
			name:  "zero value",
			value: uint256.NewInt(0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			err := module.SetSupportedChain(ctx, &SetSupportedChainArgs{ChainID: 5, Supported: true}, common.Hash{}, tt.value, tt.readOnly)
			require.ErrorIs(err, tt.expectedErr)

			_, err = module.SendMessage(ctx, &SendMessageArgs{DstChainID: 5}, common.Hash{}, tt.value, tt.readOnly)
			require.ErrorIs(err, tt.expectedErr)
		})
	}
}

func TestQueries(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	_, err := f.call(t, common.Hash{}, gateway.EntryPointSetSupportedChain, &SetSupportedChainArgs{ChainID: 8, Supported: true})
	require.NoError(err)

	out, err := f.call(t, common.Hash{}, EntryPointIsSupported, &ChainArgs{ChainID: 8})
	require.NoError(err)
	var supported bool
	require.NoError(rlp.DecodeBytes(out, &supported))
	require.True(supported)

	out, err = f.call(t, common.Hash{}, EntryPointRelayerPublicKey, nil)
	require.NoError(err)
	require.Equal(f.relayer.PublicKey(), out)

	_, err = f.call(t, common.Hash{}, "withdraw", nil)
	require.ErrorIs(err, host.ErrUnknownEntryPoint)

	_, err = f.call(t, common.Hash{}, gateway.EntryPointSendMessage, []byte("not a list"))
	require.Error(err)
}

func TestAddressToCaller(t *testing.T) {
	addr := common.HexToAddress("0x0200000000000000000000000000000000000005")
	caller := AddressToCaller(addr)
	require.Equal(t, make([]byte, 12), caller.Bytes()[:12])
	require.Equal(t, addr.Bytes(), caller.Bytes()[12:])
}

func TestEntryPoints(t *testing.T) {
	require := require.New(t)

	names := make(map[string]bool)
	for _, ep := range EntryPoints {
		require.False(names[ep.Name], ep.Name)
		names[ep.Name] = true
	}
	require.True(names[gateway.EntryPointSendMessage])
	require.True(names[gateway.EntryPointExecuteMessage])
	require.True(names[gateway.EntryPointSetSupportedChain])
}
