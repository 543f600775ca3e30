// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"context"
)

// Tx stages writes on top of a Store. Reads observe staged writes. Nothing
// reaches the underlying store until Commit, which applies the staged writes
// as one batch.
//
// A Tx is not safe for concurrent use.
type Tx struct {
	store   Store
	pending map[string][]byte
	order   []string
}

func NewTx(store Store) *Tx {
	return &Tx{
		store:   store,
		pending: make(map[string][]byte),
	}
}

func (t *Tx) Get(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := t.pending[string(key)]; ok {
		return bytes.Clone(v), nil
	}
	return t.store.Get(ctx, key)
}

func (t *Tx) Has(ctx context.Context, key []byte) (bool, error) {
	if _, ok := t.pending[string(key)]; ok {
		return true, nil
	}
	return t.store.Has(ctx, key)
}

// Put stages value under key.
func (t *Tx) Put(key, value []byte) {
	k := string(key)
	if _, ok := t.pending[k]; !ok {
		t.order = append(t.order, k)
	}
	t.pending[k] = bytes.Clone(value)
}

// Len returns the number of staged keys.
func (t *Tx) Len() int {
	return len(t.order)
}

// Commit writes every staged value to the store atomically and resets the
// transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if len(t.order) == 0 {
		return nil
	}
	ops := make([]Op, 0, len(t.order))
	for _, k := range t.order {
		ops = append(ops, Op{Key: []byte(k), Value: t.pending[k]})
	}
	if err := t.store.Write(ctx, ops); err != nil {
		return err
	}
	t.Discard()
	return nil
}

// Discard drops every staged write.
func (t *Tx) Discard() {
	clear(t.pending)
	t.order = t.order[:0]
}
