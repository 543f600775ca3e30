// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"

	"github.com/luxfi/gateway/storage"
)

// reader is satisfied by both storage.Store and *storage.Tx.
type reader interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Has(ctx context.Context, key []byte) (bool, error)
}

func supportedChainKey(chainID ChainID) []byte {
	return storage.DictionaryKey(storage.SupportedChainsDict, chainID.String())
}

// isSupported returns the stored flag for chainID, false when absent.
func isSupported(ctx context.Context, r reader, chainID ChainID) (bool, error) {
	v, err := r.Get(ctx, supportedChainKey(chainID))
	if storage.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return storage.DecodeBool(v), nil
}

// setSupported overwrites the flag for chainID. No validation is applied:
// any chain id, including the local one, may be listed.
func setSupported(ctx context.Context, store storage.Store, chainID ChainID, supported bool) error {
	return store.Put(ctx, supportedChainKey(chainID), storage.EncodeBool(supported))
}
