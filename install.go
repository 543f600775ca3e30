// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/gateway/cache"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/storage"
)

// DefaultLocalChainID is the default of the local-chain-id setting. Install
// itself stores whatever chain id it is given, 0 included.
const DefaultLocalChainID ChainID = 3

var ErrAlreadyInstalled = errors.New("gateway already installed")

var (
	relayerKeyKey    = storage.NamedKey(storage.RelayerPublicKeyKey)
	relayerSchemeKey = storage.NamedKey(storage.RelayerSchemeKey)
	localChainIDKey  = storage.NamedKey(storage.LocalChainIDKey)
)

// Config is fixed at install time.
type Config struct {
	LocalChainID     ChainID
	Scheme           signature.Scheme
	RelayerPublicKey []byte
}

// Install writes the initial gateway state into an empty store: nonce 0,
// the relayer key and its scheme, and the local chain id. A relayer key
// whose length does not match the scheme is rejected with
// ErrInvalidSignature and nothing is written.
func Install(ctx context.Context, store storage.Store, cfg Config, opts ...Option) (*Gateway, error) {
	o := newOptions(opts)
	if cfg.Scheme == "" {
		cfg.Scheme = signature.SchemeSecp256k1
	}
	if _, err := o.registry.NewVerifier(cfg.Scheme, cfg.RelayerPublicKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	installed, err := store.Has(ctx, relayerKeyKey)
	if err != nil {
		return nil, err
	}
	if installed {
		return nil, ErrAlreadyInstalled
	}

	err = store.Write(ctx, []storage.Op{
		{Key: nonceKey, Value: storage.EncodeUint64(0)},
		{Key: relayerKeyKey, Value: cfg.RelayerPublicKey},
		{Key: relayerSchemeKey, Value: []byte(cfg.Scheme)},
		{Key: localChainIDKey, Value: storage.EncodeUint64(uint64(cfg.LocalChainID))},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write gateway state: %w", err)
	}
	o.logger.Info(
		"Installed gateway",
		zapChainID("localChainID", cfg.LocalChainID),
		zapScheme(cfg.Scheme),
	)
	return open(ctx, store, o)
}

// Open attaches to a store a gateway was previously installed into.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Gateway, error) {
	return open(ctx, store, newOptions(opts))
}

func open(ctx context.Context, store storage.Store, o *options) (*Gateway, error) {
	read := func(key []byte, name string) ([]byte, error) {
		v, err := store.Get(ctx, key)
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, name)
		}
		return v, err
	}

	schemeBytes, err := read(relayerSchemeKey, storage.RelayerSchemeKey)
	if err != nil {
		return nil, err
	}
	relayerKey, err := read(relayerKeyKey, storage.RelayerPublicKeyKey)
	if err != nil {
		return nil, err
	}
	chainBytes, err := read(localChainIDKey, storage.LocalChainIDKey)
	if err != nil {
		return nil, err
	}
	if _, err := readNonce(ctx, store); err != nil {
		return nil, err
	}

	localChainID, err := storage.DecodeUint64(chainBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode local chain id: %w", err)
	}
	verifier, err := o.registry.NewVerifier(signature.Scheme(schemeBytes), relayerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return &Gateway{
		store:        store,
		localChainID: ChainID(localChainID),
		gate:         signatureGate{verifier: verifier},
		replay:       newReplayGuard(store, o.cacheSize),
		archive:      cache.NewLRUCache[string, []byte](o.cacheSize),
		dispatcher:   o.dispatcher,
		authorizer:   o.authorizer,
		events:       o.events,
		metrics:      o.metrics,
		logger:       o.logger,
	}, nil
}
