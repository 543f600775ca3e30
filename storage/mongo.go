// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ Store = (*MongoStore)(nil)

	ErrTransactionsUnsupported = errors.New("mongo deployment does not support transactions, a replica set or sharded cluster is required")
)

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// helloReply is the part of the hello command reply that tells whether the
// deployment can run multi-document transactions.
type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

// supportsTransactions reports whether the server that sent reply is a
// replica set member or a mongos.
func supportsTransactions(reply helloReply) bool {
	return reply.SetName != "" || reply.Msg == "isdbgrid"
}

// MongoStore is a Store backed by a MongoDB collection, one document per key.
//
// A Write of more than one op runs inside a multi-document transaction and
// therefore needs a replica set or sharded deployment. DialMongo refuses
// standalone servers.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// DialMongo connects to uri and verifies that the deployment can run the
// transactions Write needs.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := checkDeployment(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return NewMongoStore(client, database, collection), nil
}

func checkDeployment(ctx context.Context, client *mongo.Client) error {
	var reply helloReply
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply)
	if err != nil {
		return fmt.Errorf("failed to reach mongo: %w", err)
	}
	if !supportsTransactions(reply) {
		return ErrTransactionsUnsupported
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	var entry mongoEntry
	err := s.collection.FindOne(ctx, bson.M{"_id": string(key)}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *MongoStore) Has(ctx context.Context, key []byte) (bool, error) {
	n, err := s.collection.CountDocuments(
		ctx,
		bson.M{"_id": string(key)},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) Put(ctx context.Context, key, value []byte) error {
	return s.upsert(ctx, key, value)
}

func (s *MongoStore) Write(ctx context.Context, ops []Op) error {
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return s.upsert(ctx, ops[0].Key, ops[0].Value)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range ops {
			if err := s.upsert(sc, op.Key, op.Value); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) upsert(ctx context.Context, key, value []byte) error {
	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": string(key)},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
