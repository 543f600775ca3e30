// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"
)

var _ Store = (*DBStore)(nil)

// DBStore is a Store backed by a cometbft-db database.
type DBStore struct {
	db dbm.DB
}

func NewDBStore(db dbm.DB) *DBStore {
	return &DBStore{db: db}
}

// NewMemStore returns an in-memory store.
func NewMemStore() *DBStore {
	return NewDBStore(dbm.NewMemDB())
}

// OpenLevelDB opens (or creates) a goleveldb database named name under dir.
func OpenLevelDB(name, dir string) (*DBStore, error) {
	db, err := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb %s in %s: %w", name, dir, err)
	}
	return NewDBStore(db), nil
}

func (s *DBStore) Get(_ context.Context, key []byte) ([]byte, error) {
	v, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *DBStore) Has(_ context.Context, key []byte) (bool, error) {
	return s.db.Has(key)
}

func (s *DBStore) Put(_ context.Context, key, value []byte) error {
	return s.db.SetSync(key, value)
}

func (s *DBStore) Write(_ context.Context, ops []Op) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		if err := batch.Set(op.Key, op.Value); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

func (s *DBStore) Close() error {
	return s.db.Close()
}
