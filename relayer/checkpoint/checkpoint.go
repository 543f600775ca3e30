// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package checkpoint

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/storage"
	"github.com/luxfi/gateway/utils"
	"go.uber.org/zap"
)

// Key returns the storage key holding the next nonce to relay from
// sourceChainID to destinationChainID.
func Key(sourceChainID, destinationChainID gateway.ChainID) []byte {
	return storage.NamedKey(fmt.Sprintf("relayer/%d/%d/next_nonce", sourceChainID, destinationChainID))
}

//
// Manager commits relayed nonces to the store in a thread safe manner.
//

type Manager struct {
	logger      *zap.Logger
	store       storage.Store
	key         []byte
	writeSignal chan struct{}
	// every nonce below nextNonce has been handled
	nextNonce      uint64
	lock           sync.RWMutex
	pendingCommits *utils.UInt64Heap
	// set whenever nextNonce moves
	dirty bool
}

func NewManager(
	ctx context.Context,
	logger *zap.Logger,
	store storage.Store,
	writeSignal chan struct{},
	sourceChainID gateway.ChainID,
	destinationChainID gateway.ChainID,
	startingNonce uint64,
) (*Manager, error) {
	h := &utils.UInt64Heap{}
	heap.Init(h)
	logger = logger.With(
		zap.Stringer("sourceChainID", sourceChainID),
		zap.Stringer("destinationChainID", destinationChainID),
	)
	logger.Info(
		"Creating checkpoint manager",
		zap.Uint64("startingNonce", startingNonce),
	)

	key := Key(sourceChainID, destinationChainID)
	var storedNonce uint64
	value, err := store.Get(ctx, key)
	switch {
	case err == nil:
		storedNonce, err = storage.DecodeUint64(value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode the stored checkpoint: %w", err)
		}
	case !storage.IsNotFound(err):
		logger.Error(
			"Failed to get the stored checkpoint",
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get the stored checkpoint: %w", err)
	}

	return &Manager{
		logger:         logger,
		store:          store,
		key:            key,
		writeSignal:    writeSignal,
		nextNonce:      max(storedNonce, startingNonce),
		pendingCommits: h,
		dirty:          false,
	}, nil
}

// Run writes the checkpoint every time writeSignal fires until it is closed.
func (m *Manager) Run(ctx context.Context) {
	go m.listenForWriteSignal(ctx)
}

// WriteToStore persists the checkpoint if it moved since the last write.
func (m *Manager) WriteToStore(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if !m.dirty {
		return nil
	}

	m.logger.Debug(
		"Writing checkpoint",
		zap.Uint64("nextNonce", m.nextNonce),
	)
	if err := m.store.Put(ctx, m.key, storage.EncodeUint64(m.nextNonce)); err != nil {
		m.logger.Error(
			"Failed to write checkpoint",
			zap.Error(err),
		)
		return err
	}
	m.dirty = false
	return nil
}

func (m *Manager) listenForWriteSignal(ctx context.Context) {
	for range m.writeSignal {
		_ = m.WriteToStore(ctx)
	}
}

// StageCommittedNonce marks nonce as handled. Nonces are committed in
// sequence: a nonce more than one past the checkpoint is held in memory
// until the gap below it closes.
func (m *Manager) StageCommittedNonce(nonce uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if nonce < m.nextNonce {
		m.logger.Debug(
			"Attempting to commit nonce below the checkpoint. Skipping.",
			zap.Uint64("nonce", nonce),
			zap.Uint64("nextNonce", m.nextNonce),
		)
		return
	}

	heap.Push(m.pendingCommits, nonce)
	for m.pendingCommits.Len() > 0 && m.pendingCommits.Peek() <= m.nextNonce {
		n := heap.Pop(m.pendingCommits).(uint64)
		if n < m.nextNonce {
			// duplicate
			continue
		}
		m.nextNonce = n + 1
		m.dirty = true
	}
}

// NextNonce returns the first nonce not yet committed.
func (m *Manager) NextNonce() uint64 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.nextNonce
}

// Pending returns the number of nonces waiting for a gap to close.
func (m *Manager) Pending() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.pendingCommits.Len()
}
