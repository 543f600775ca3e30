// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gateway implements a cross-chain message gateway. Callers on the
// local chain sequence outbound messages addressed to remote chains, and a
// single trusted relayer proves inbound messages which are then delivered
// to local recipient contracts exactly once.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/gateway/cache"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/storage"
	"go.uber.org/zap"
)

const (
	EntryPointSendMessage       = "send_message"
	EntryPointExecuteMessage    = "execute_message"
	EntryPointSetSupportedChain = "set_supported_chain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrReentrantCall   = errors.New("gateway entry point re-entered")
)

type inCallKey struct{}

// Gateway is an installed gateway instance. Every entry point runs as one
// atomic unit: writes are staged and committed on success, except the
// replay mark of an inbound message, which is committed as soon as it is
// made. Entry points are serialized per instance and must not be re-entered
// from a recipient.
type Gateway struct {
	lock sync.Mutex

	store        storage.Store
	localChainID ChainID
	gate         signatureGate
	replay       *replayGuard
	archive      *cache.LRUCache[string, []byte]
	dispatcher   Dispatcher
	authorizer   Authorizer
	events       *EventFeed
	metrics      *Metrics
	logger       *zap.Logger
}

// SendMessage sequences an outbound message from sender to receiver on
// destinationChainID and returns its canonical bytes. On failure nothing is
// written.
func (g *Gateway) SendMessage(
	ctx context.Context,
	sender []byte,
	destinationChainID ChainID,
	receiver []byte,
	payload []byte,
) ([]byte, error) {
	ctx, leave, err := g.enter(ctx, true)
	if err != nil {
		return nil, err
	}
	defer leave()

	canonical, msg, err := g.sendMessage(ctx, sender, destinationChainID, receiver, payload)
	if err != nil {
		g.metrics.failedSendCount.WithLabelValues(destinationChainID.String(), failureReason(err)).Inc()
		g.logger.Debug(
			"Rejected outbound message",
			zapChainID("dstChainID", destinationChainID),
			zap.Error(err),
		)
		return nil, err
	}

	key := MessageKey(canonical)
	g.metrics.sentMessageCount.WithLabelValues(destinationChainID.String()).Inc()
	g.logger.Debug(
		"Sequenced outbound message",
		zapChainID("dstChainID", destinationChainID),
		zap.Uint64("nonce", msg.Nonce),
		zap.String("key", key),
	)
	g.events.publish(SentEvent{
		Key:                key,
		Nonce:              msg.Nonce,
		DestinationChainID: destinationChainID,
		Message:            canonical,
	})
	return canonical, nil
}

func (g *Gateway) sendMessage(
	ctx context.Context,
	sender []byte,
	destinationChainID ChainID,
	receiver []byte,
	payload []byte,
) ([]byte, *Message, error) {
	supported, err := isSupported(ctx, g.store, destinationChainID)
	if err != nil {
		return nil, nil, err
	}
	if !supported {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, destinationChainID)
	}

	tx := storage.NewTx(g.store)
	msg, canonical, err := g.sequence(ctx, tx, sender, destinationChainID, receiver, payload)
	if err != nil {
		tx.Discard()
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit outbound message: %w", err)
	}
	return canonical, msg, nil
}

// ExecuteMessage admits and delivers an inbound message from
// sourceChainID. The signature is checked first and a failure leaves state
// untouched. Once the signature holds, the message digest is marked
// executed before the receiver is validated or called, so a receiver that
// is malformed or fails consumes the message for good.
func (g *Gateway) ExecuteMessage(
	ctx context.Context,
	sourceChainID ChainID,
	sourceGateway []byte,
	receiver []byte,
	nonce uint64,
	payload []byte,
	sig []byte,
) error {
	ctx, leave, err := g.enter(ctx, true)
	if err != nil {
		return err
	}
	defer leave()

	msg := NewMessage(sourceChainID, g.localChainID, sourceGateway, receiver, nonce, payload)
	key, err := g.executeMessage(ctx, msg, sig)
	log := g.logger.With(
		zapChainID("srcChainID", sourceChainID),
		zap.Uint64("nonce", nonce),
		zap.String("key", key),
	)
	if err != nil {
		g.metrics.failedExecuteCount.WithLabelValues(sourceChainID.String(), failureReason(err)).Inc()
		log.Debug("Rejected inbound message", zap.Error(err))
		return err
	}

	g.metrics.executedMessageCount.WithLabelValues(sourceChainID.String()).Inc()
	log.Debug("Executed inbound message")
	return nil
}

// ExecutePacket executes the inbound message carried by p.
func (g *Gateway) ExecutePacket(ctx context.Context, p *Packet) error {
	return g.ExecuteMessage(ctx, p.SourceChainID, p.SourceGateway, p.Receiver, p.Nonce, p.Payload, p.Signature)
}

func (g *Gateway) executeMessage(ctx context.Context, msg *Message, sig []byte) (string, error) {
	canonical := msg.Bytes()
	key := MessageKey(canonical)

	if err := g.gate.admit(canonical, sig); err != nil {
		return key, err
	}
	if err := g.replay.admit(ctx, key); err != nil {
		return key, err
	}
	delivery := &Delivery{
		SourceChainID: msg.SourceChainID,
		SourceGateway: msg.Sender,
		Payload:       msg.Payload,
	}
	return key, dispatch(ctx, g.dispatcher, msg.Receiver, delivery)
}

// SetSupportedChain overwrites the supported flag of chainID.
func (g *Gateway) SetSupportedChain(ctx context.Context, caller []byte, chainID ChainID, supported bool) error {
	if err := g.authorizer.Authorize(caller, EntryPointSetSupportedChain); err != nil {
		return err
	}

	ctx, leave, err := g.enter(ctx, true)
	if err != nil {
		return err
	}
	defer leave()

	if err := setSupported(ctx, g.store, chainID, supported); err != nil {
		return fmt.Errorf("failed to set supported chain %s: %w", chainID, err)
	}
	g.logger.Info(
		"Updated supported chain",
		zapChainID("chainID", chainID),
		zap.Bool("supported", supported),
	)
	return nil
}

// IsSupported returns whether sends to chainID are accepted.
func (g *Gateway) IsSupported(ctx context.Context, chainID ChainID) (bool, error) {
	ctx, leave, _ := g.enter(ctx, false)
	defer leave()

	return isSupported(ctx, g.store, chainID)
}

// Nonce returns the nonce the next outbound message will be assigned.
func (g *Gateway) Nonce(ctx context.Context) (uint64, error) {
	ctx, leave, _ := g.enter(ctx, false)
	defer leave()

	return readNonce(ctx, g.store)
}

// Message returns the archived canonical bytes stored under key.
func (g *Gateway) Message(ctx context.Context, key string) ([]byte, error) {
	ctx, leave, _ := g.enter(ctx, false)
	defer leave()

	// archive entries never change once written
	b, err := g.archive.Get(key, func(key string) ([]byte, error) {
		return g.store.Get(ctx, archiveKey(key))
	}, false)
	if storage.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, key)
	}
	return bytes.Clone(b), err
}

// IsExecuted returns whether the inbound message with digest key has been
// admitted.
func (g *Gateway) IsExecuted(ctx context.Context, key string) (bool, error) {
	ctx, leave, _ := g.enter(ctx, false)
	defer leave()

	return g.replay.isExecuted(ctx, key)
}

// enter serializes entry points on g. A mutating entry point reached from
// inside a call on g fails with ErrReentrantCall; a read reached that way
// runs under the lock the outer call holds.
func (g *Gateway) enter(ctx context.Context, mutating bool) (context.Context, func(), error) {
	if ctx.Value(inCallKey{}) == g {
		if mutating {
			return ctx, nil, ErrReentrantCall
		}
		return ctx, func() {}, nil
	}
	g.lock.Lock()
	return context.WithValue(ctx, inCallKey{}, g), g.lock.Unlock, nil
}

func (g *Gateway) LocalChainID() ChainID {
	return g.localChainID
}

func (g *Gateway) RelayerPublicKey() []byte {
	return bytes.Clone(g.gate.verifier.PublicKey())
}

func (g *Gateway) Scheme() signature.Scheme {
	return g.gate.verifier.Scheme()
}

// Events returns the feed SentEvents are published on.
func (g *Gateway) Events() *EventFeed {
	return g.events
}

func zapChainID(name string, chainID ChainID) zap.Field {
	return zap.Uint32(name, uint32(chainID))
}

func zapScheme(scheme signature.Scheme) zap.Field {
	return zap.String("scheme", string(scheme))
}
