// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ReceiverLen is the only receiver width the dispatcher accepts.
const ReceiverLen = 32

var ErrNoRecipient = errors.New("no recipient registered")

// Delivery is what a recipient's on_call receives.
type Delivery struct {
	SourceChainID ChainID
	SourceGateway []byte
	Payload       []byte
}

// Dispatcher hands an admitted inbound message to its recipient contract.
// A returned error fails the whole execute call.
type Dispatcher interface {
	Dispatch(ctx context.Context, receiver [ReceiverLen]byte, delivery *Delivery) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, receiver [ReceiverLen]byte, delivery *Delivery) error

func (f DispatcherFunc) Dispatch(ctx context.Context, receiver [ReceiverLen]byte, delivery *Delivery) error {
	return f(ctx, receiver, delivery)
}

var noRecipients = DispatcherFunc(func(context.Context, [ReceiverLen]byte, *Delivery) error {
	return ErrNoRecipient
})

func dispatch(ctx context.Context, d Dispatcher, receiver []byte, delivery *Delivery) error {
	if len(receiver) != ReceiverLen {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidReceiver, ReceiverLen, len(receiver))
	}
	var hash [ReceiverLen]byte
	copy(hash[:], receiver)
	if err := d.Dispatch(ctx, hash, delivery); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}
