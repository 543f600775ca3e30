// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package host is a minimal contract execution host. Contracts are
// addressed by 32-byte hashes, expose named entry points taking RLP encoded
// arguments, and see the identity of their caller. Top-level calls are
// serialized; calls a contract makes while handling a call run inline.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrContractExists    = errors.New("contract already deployed")
	ErrUnknownContract   = errors.New("unknown contract")
	ErrUnknownEntryPoint = errors.New("unknown entry point")
)

// Call describes one contract invocation.
type Call struct {
	Caller     common.Hash
	Contract   common.Hash
	EntryPoint string
	Args       []byte
	Value      *uint256.Int
	ReadOnly   bool
}

// Contract handles calls to its entry points.
type Contract interface {
	Call(ctx context.Context, h *Host, call *Call) ([]byte, error)
}

// ContractFunc adapts a function to the Contract interface.
type ContractFunc func(ctx context.Context, h *Host, call *Call) ([]byte, error)

func (f ContractFunc) Call(ctx context.Context, h *Host, call *Call) ([]byte, error) {
	return f(ctx, h, call)
}

type inCallKey struct{}

type Host struct {
	// serializes top-level calls
	callLock sync.Mutex

	lock      sync.RWMutex
	contracts map[common.Hash]Contract
	names     map[string]common.Hash

	logger *zap.Logger
}

func New(logger *zap.Logger) *Host {
	return &Host{
		contracts: make(map[common.Hash]Contract),
		names:     make(map[string]common.Hash),
		logger:    logger,
	}
}

// ContractHash derives the hash a contract deployed under name receives.
func ContractHash(name string) common.Hash {
	return common.Hash(blake2b.Sum256([]byte(name)))
}

// Deploy registers c under name and returns its hash.
func (h *Host) Deploy(name string, c Contract) (common.Hash, error) {
	hash := ContractHash(name)
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.contracts[hash]; ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrContractExists, name)
	}
	h.contracts[hash] = c
	h.names[name] = hash
	h.logger.Info(
		"Deployed contract",
		zap.String("name", name),
		zap.Stringer("hash", hash),
	)
	return hash, nil
}

// Lookup returns the hash of the contract deployed under name.
func (h *Host) Lookup(name string) (common.Hash, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	hash, ok := h.names[name]
	return hash, ok
}

// Call invokes call.Contract. Calls made from inside a contract with the
// context it was handed run inline instead of waiting for the outer call.
func (h *Host) Call(ctx context.Context, call *Call) ([]byte, error) {
	if ctx.Value(inCallKey{}) != h {
		h.callLock.Lock()
		defer h.callLock.Unlock()
		ctx = context.WithValue(ctx, inCallKey{}, h)
	}

	h.lock.RLock()
	c, ok := h.contracts[call.Contract]
	h.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, call.Contract)
	}

	h.logger.Debug(
		"Calling contract",
		zap.Stringer("contract", call.Contract),
		zap.String("entryPoint", call.EntryPoint),
		zap.Stringer("caller", call.Caller),
	)
	return c.Call(ctx, h, call)
}
