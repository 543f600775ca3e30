// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongoStore(mt *mtest.T) *MongoStore {
	return NewMongoStore(mt.Client, mtest.TestDb, mt.Coll.Name())
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	key := NamedKey(NonceKey)

	mt.Run("get", func(mt *mtest.T) {
		require := require.New(mt)
		s := newMockMongoStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: string(key)},
			{Key: "value", Value: EncodeUint64(7)},
		}))
		v, err := s.Get(ctx, key)
		require.NoError(err)
		n, err := DecodeUint64(v)
		require.NoError(err)
		require.Equal(uint64(7), n)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err = s.Get(ctx, key)
		require.ErrorIs(err, ErrNotFound)
	})

	mt.Run("has", func(mt *mtest.T) {
		require := require.New(mt)
		s := newMockMongoStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "n", Value: int64(1)},
		}))
		has, err := s.Has(ctx, key)
		require.NoError(err)
		require.True(has)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		has, err = s.Has(ctx, key)
		require.NoError(err)
		require.False(has)
	})

	mt.Run("put", func(mt *mtest.T) {
		require := require.New(mt)
		s := newMockMongoStore(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))
		require.NoError(s.Put(ctx, key, EncodeUint64(1)))

		started := mt.GetStartedEvent()
		require.NotNil(started)
		require.Equal("update", started.CommandName)
	})

	// A single op is one upsert; no transaction is started, so the write
	// also succeeds on a standalone server.
	mt.Run("single op write", func(mt *mtest.T) {
		require := require.New(mt)
		s := newMockMongoStore(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(s.Write(ctx, []Op{{Key: key, Value: EncodeUint64(2)}}))

		started := mt.GetStartedEvent()
		require.NotNil(started)
		require.Equal("update", started.CommandName)
		_, err := started.Command.LookupErr("startTransaction")
		require.Error(err)
		require.Nil(mt.GetStartedEvent())
	})

	mt.Run("empty write", func(mt *mtest.T) {
		require := require.New(mt)
		s := newMockMongoStore(mt)

		require.NoError(s.Write(ctx, nil))
		require.Nil(mt.GetStartedEvent())
	})

	mt.Run("replica set accepted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "isWritablePrimary", Value: true},
			bson.E{Key: "setName", Value: "rs0"},
		))
		require.NoError(mt, checkDeployment(ctx, mt.Client))
	})

	mt.Run("standalone rejected", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "isWritablePrimary", Value: true},
		))
		require.ErrorIs(mt, checkDeployment(ctx, mt.Client), ErrTransactionsUnsupported)
	})
}

// TestMongoStoreDeployment runs the Store checks, multi-op transactions
// included, against the replica set named by GATEWAY_TEST_MONGO_URI.
func TestMongoStoreDeployment(t *testing.T) {
	uri := os.Getenv("GATEWAY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("GATEWAY_TEST_MONGO_URI is not set")
	}
	ctx := context.Background()
	s, err := DialMongo(ctx, uri, "gateway_test", t.Name())
	require.NoError(t, err)
	defer func() {
		_ = s.collection.Drop(ctx)
		_ = s.Close()
	}()

	testStore(t, s)
}

func TestSupportsTransactions(t *testing.T) {
	tests := []struct {
		name     string
		reply    helloReply
		expected bool
	}{
		{
			name:     "standalone",
			reply:    helloReply{},
			expected: false,
		},
		{
			name:     "replica set member",
			reply:    helloReply{SetName: "rs0"},
			expected: true,
		},
		{
			name:     "mongos",
			reply:    helloReply{Msg: "isdbgrid"},
			expected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, supportsTransactions(tt.reply))
		})
	}
}
