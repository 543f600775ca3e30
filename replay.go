// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"

	"github.com/luxfi/gateway/cache"
	"github.com/luxfi/gateway/storage"
)

func executedKey(key string) []byte {
	return storage.DictionaryKey(storage.ExecutedMessagesDict, key)
}

// replayGuard records executed inbound digests. Marks are permanent, so
// only positive answers are cached.
type replayGuard struct {
	store    storage.Store
	executed *cache.LRUCache[string, bool]
}

func newReplayGuard(store storage.Store, cacheSize int) *replayGuard {
	return &replayGuard{
		store:    store,
		executed: cache.NewLRUCache[string, bool](cacheSize),
	}
}

func (r *replayGuard) isExecuted(ctx context.Context, key string) (bool, error) {
	if r.executed.Contains(key) {
		return true, nil
	}
	v, err := r.store.Get(ctx, executedKey(key))
	if storage.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	executed := storage.DecodeBool(v)
	if executed {
		r.executed.Put(key, true)
	}
	return executed, nil
}

// admit rejects a digest that was already executed, otherwise marks it and
// commits the mark immediately. The mark survives any failure that follows.
func (r *replayGuard) admit(ctx context.Context, key string) error {
	executed, err := r.isExecuted(ctx, key)
	if err != nil {
		return err
	}
	if executed {
		return ErrAlreadyExecuted
	}
	if err := r.store.Put(ctx, executedKey(key), storage.EncodeBool(true)); err != nil {
		return err
	}
	r.executed.Put(key, true)
	return nil
}
