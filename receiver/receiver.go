// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package receiver contains recipient contracts for inbound messages.
package receiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/gateway/host"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
)

const (
	// names the reference deployments use
	NoopName    = "mock_receiver"
	CounterName = "counter_receiver"

	CountEntryPoint = "count"
)

var (
	_ host.Contract = Noop{}
	_ host.Contract = (*Counter)(nil)
	_ host.Contract = (*Reverter)(nil)

	ErrReverted = errors.New("recipient reverted")
)

// Noop accepts every on_call and does nothing.
type Noop struct{}

func (Noop) Call(_ context.Context, _ *host.Host, call *host.Call) ([]byte, error) {
	if call.EntryPoint != host.OnCallEntryPoint {
		return nil, fmt.Errorf("%w: %s", host.ErrUnknownEntryPoint, call.EntryPoint)
	}
	return nil, nil
}

// Delivery is one on_call a Counter observed.
type Delivery struct {
	Caller common.Hash
	host.OnCallArgs
}

// Counter records every delivery it receives.
type Counter struct {
	lock       sync.Mutex
	deliveries []Delivery
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Call(_ context.Context, _ *host.Host, call *host.Call) ([]byte, error) {
	switch call.EntryPoint {
	case host.OnCallEntryPoint:
		var args host.OnCallArgs
		if err := host.DecodeArgs(call.Args, &args); err != nil {
			return nil, err
		}
		c.lock.Lock()
		c.deliveries = append(c.deliveries, Delivery{Caller: call.Caller, OnCallArgs: args})
		c.lock.Unlock()
		return nil, nil
	case CountEntryPoint:
		return rlp.EncodeToBytes(c.Count())
	default:
		return nil, fmt.Errorf("%w: %s", host.ErrUnknownEntryPoint, call.EntryPoint)
	}
}

// Count returns the number of deliveries received.
func (c *Counter) Count() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return uint64(len(c.deliveries))
}

// Deliveries returns a copy of every delivery received, oldest first.
func (c *Counter) Deliveries() []Delivery {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]Delivery, len(c.deliveries))
	for i, d := range c.deliveries {
		out[i] = Delivery{
			Caller: d.Caller,
			OnCallArgs: host.OnCallArgs{
				SourceChainID: d.SourceChainID,
				SourceGateway: bytes.Clone(d.SourceGateway),
				Payload:       bytes.Clone(d.Payload),
			},
		}
	}
	return out
}

// Reverter fails every on_call.
type Reverter struct{}

func (*Reverter) Call(_ context.Context, _ *host.Host, call *host.Call) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s", ErrReverted, call.EntryPoint)
}
