// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"testing"
	"time"

	"github.com/luxfi/gateway"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echo() Contract {
	return ContractFunc(func(_ context.Context, _ *Host, call *Call) ([]byte, error) {
		return append(call.Caller.Bytes(), call.Args...), nil
	})
}

func TestDeployAndCall(t *testing.T) {
	require := require.New(t)
	h := New(zap.NewNop())

	hash, err := h.Deploy("echo", echo())
	require.NoError(err)
	require.Equal(ContractHash("echo"), hash)

	found, ok := h.Lookup("echo")
	require.True(ok)
	require.Equal(hash, found)

	_, err = h.Deploy("echo", echo())
	require.ErrorIs(err, ErrContractExists)

	caller := common.BytesToHash([]byte{1})
	out, err := h.Call(context.Background(), &Call{Caller: caller, Contract: hash, Args: []byte{2}})
	require.NoError(err)
	require.Equal(append(caller.Bytes(), 2), out)

	_, err = h.Call(context.Background(), &Call{Contract: ContractHash("missing")})
	require.ErrorIs(err, ErrUnknownContract)
}

func TestNestedCallRunsInline(t *testing.T) {
	require := require.New(t)
	h := New(zap.NewNop())

	inner, err := h.Deploy("inner", echo())
	require.NoError(err)
	outer, err := h.Deploy("outer", ContractFunc(func(ctx context.Context, h *Host, call *Call) ([]byte, error) {
		return h.Call(ctx, &Call{Caller: call.Contract, Contract: inner})
	}))
	require.NoError(err)

	done := make(chan []byte)
	go func() {
		out, _ := h.Call(context.Background(), &Call{Contract: outer})
		done <- out
	}()

	select {
	case out := <-done:
		require.Equal(outer.Bytes(), out)
	case <-time.After(5 * time.Second):
		require.FailNow("nested call deadlocked")
	}
}

func TestDispatcher(t *testing.T) {
	require := require.New(t)
	h := New(zap.NewNop())

	var got OnCallArgs
	var gotCaller common.Hash
	recipient, err := h.Deploy("recipient", ContractFunc(func(_ context.Context, _ *Host, call *Call) ([]byte, error) {
		require.Equal(OnCallEntryPoint, call.EntryPoint)
		gotCaller = call.Caller
		return nil, DecodeArgs(call.Args, &got)
	}))
	require.NoError(err)

	gw := ContractHash("gateway")
	d := Dispatcher(h, gw)
	err = d.Dispatch(context.Background(), recipient, &gateway.Delivery{
		SourceChainID: 7,
		SourceGateway: []byte("src"),
		Payload:       []byte("payload"),
	})
	require.NoError(err)
	require.Equal(gw, gotCaller)
	require.Equal(OnCallArgs{
		SourceChainID: 7,
		SourceGateway: []byte("src"),
		Payload:       []byte("payload"),
	}, got)
}
