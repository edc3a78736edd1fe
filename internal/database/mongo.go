package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps one collection per table; the record id is the _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (m *MongoStore) Name() string { return "mongo" }

// SelectAll decodes every document of table into dst, a pointer to a slice.
func (m *MongoStore) SelectAll(ctx context.Context, table string, dst any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: -1}})
	cur, err := m.db.Collection(table).Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("mongo: find %s: %w", table, err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, dst); err != nil {
		return fmt.Errorf("mongo: decode %s: %w", table, err)
	}
	return nil
}

func (m *MongoStore) Upsert(ctx context.Context, table, id string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := m.db.Collection(table).ReplaceOne(ctx, bson.M{"_id": id}, row, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: upsert %s/%s: %w", table, id, err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if _, err := m.db.Collection(table).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo: delete %s/%s: %w", table, id, err)
	}
	return nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
