// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"fmt"

	"github.com/luxfi/gateway/storage"
)

var nonceKey = storage.NamedKey(storage.NonceKey)

func archiveKey(key string) []byte {
	return storage.DictionaryKey(storage.MessagesDict, key)
}

func readNonce(ctx context.Context, r reader) (uint64, error) {
	v, err := r.Get(ctx, nonceKey)
	if storage.IsNotFound(err) {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, storage.NonceKey)
	}
	if err != nil {
		return 0, err
	}
	return storage.DecodeUint64(v)
}

// sequence assigns the current nonce to a new outbound message and stages
// the nonce increment and the archive entry in tx. It returns the message
// and its canonical bytes.
func (g *Gateway) sequence(
	ctx context.Context,
	tx *storage.Tx,
	sender []byte,
	destinationChainID ChainID,
	receiver []byte,
	payload []byte,
) (*Message, []byte, error) {
	nonce, err := readNonce(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	next, err := AddUint64(nonce, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("nonce %d: %w", nonce, err)
	}

	msg := NewMessage(g.localChainID, destinationChainID, sender, receiver, nonce, payload)
	canonical := msg.Bytes()

	tx.Put(nonceKey, storage.EncodeUint64(next))
	tx.Put(archiveKey(MessageKey(canonical)), canonical)
	return msg, canonical, nil
}
