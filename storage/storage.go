// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage holds the key-value surface gateway state is persisted
// through, together with the backends that implement it.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Op is a single write applied as part of an atomic batch.
type Op struct {
	Key   []byte
	Value []byte
}

// Store is a byte-oriented key-value store.
//
// Gateway state is append-only, so the interface carries no delete.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Has reports whether key is present.
	Has(ctx context.Context, key []byte) (bool, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key, value []byte) error

	// Write applies all ops atomically.
	Write(ctx context.Context, ops []Op) error

	Close() error
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
