// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewRedisStore(client, "test:")
}

func TestStores(t *testing.T) {
	tests := []struct {
		name  string
		store func(t *testing.T) Store
	}{
		{
			name:  "memdb",
			store: func(*testing.T) Store { return NewMemStore() },
		},
		{
			name:  "goleveldb",
			store: func(t *testing.T) Store {
				s, err := OpenLevelDB("gateway", t.TempDir())
				require.NoError(t, err)
				return s
			},
		},
		{
			name:  "redis",
			store: func(t *testing.T) Store { return newRedisStore(t) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.store(t)
			defer s.Close()
			testStore(t, s)
		})
	}
}

// testStore checks the Store contract against an empty s.
func testStore(t *testing.T, s Store) {
	require := require.New(t)
	ctx := context.Background()

	key := NamedKey(NonceKey)
	_, err := s.Get(ctx, key)
	require.ErrorIs(err, ErrNotFound)

	has, err := s.Has(ctx, key)
	require.NoError(err)
	require.False(has)

	require.NoError(s.Put(ctx, key, EncodeUint64(7)))
	v, err := s.Get(ctx, key)
	require.NoError(err)
	n, err := DecodeUint64(v)
	require.NoError(err)
	require.Equal(uint64(7), n)

	a := DictionaryKey(MessagesDict, "a")
	b := DictionaryKey(MessagesDict, "b")
	require.NoError(s.Write(ctx, []Op{
		{Key: a, Value: []byte("first")},
		{Key: b, Value: []byte("second")},
	}))
	v, err = s.Get(ctx, a)
	require.NoError(err)
	require.Equal([]byte("first"), v)
	has, err = s.Has(ctx, b)
	require.NoError(err)
	require.True(has)
}

func TestRedisStorePrefix(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	server := miniredis.RunT(t)
	left := NewRedisStore(redis.NewClient(&redis.Options{Addr: server.Addr()}), "left:")
	right := NewRedisStore(redis.NewClient(&redis.Options{Addr: server.Addr()}), "right:")

	key := NamedKey(RelayerPublicKeyKey)
	require.NoError(left.Put(ctx, key, []byte{1}))

	_, err := right.Get(ctx, key)
	require.ErrorIs(err, ErrNotFound)
	require.True(server.Exists("left:" + string(key)))
}

func TestKeyEncoding(t *testing.T) {
	require := require.New(t)

	require.Equal([]byte("named/nonce"), NamedKey(NonceKey))
	require.Equal([]byte("dict/supported_chains/42"), DictionaryKey(SupportedChainsDict, "42"))

	require.True(DecodeBool(EncodeBool(true)))
	require.False(DecodeBool(EncodeBool(false)))
	require.False(DecodeBool(nil))

	_, err := DecodeUint64([]byte{1, 2})
	require.ErrorIs(err, errInvalidUint64)
}
