// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/luxfi/gateway/config"
	"github.com/luxfi/gateway/storage"
)

// openStore opens the configured backend. name separates the data of
// different components sharing one backend: it is the goleveldb database
// name, the redis key prefix and the mongo collection.
func openStore(ctx context.Context, cfg *config.Config, name string) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		return storage.NewMemStore(), nil
	case config.StorageBackendGoLevelDB:
		return storage.OpenLevelDB(name, cfg.StorageLocation)
	case config.StorageBackendRedis:
		return storage.DialRedis(ctx, cfg.RedisURL, name+"/")
	case config.StorageBackendMongo:
		return storage.DialMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, name)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
