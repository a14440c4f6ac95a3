package feed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Default MongoDB names used by [NewMongoStore] when none are given.
const (
	DefaultMongoDatabase   = "waterfall"
	DefaultMongoCollection = "items"
)

// mongoItem stores the feed position next to the item so pages come back
// in insertion order.
type mongoItem struct {
	Seq  int `bson:"seq"`
	Item `bson:",inline"`
}

// MongoStore serves items from a MongoDB collection.
//
// Insert assigns positions from the current document count, so a
// collection should have a single writer.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore connects to uri and ensures the position index exists.
// Empty database or collection names fall back to the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	s, err := NewMongoStoreFromClient(ctx, client, database, collection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect a client it did not create.
func NewMongoStoreFromClient(ctx context.Context, client *mongo.Client, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create seq index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Page implements PageSource.
func (s *MongoStore) Page(ctx context.Context, offset, limit int) ([]Item, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find items")
	}
	var docs []mongoItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode items")
	}
	items := make([]Item, len(docs))
	for i, d := range docs {
		items[i] = d.Item
	}
	return items, nil
}

// Len implements Store.
func (s *MongoStore) Len(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNetwork, err, "count items")
	}
	return int(n), nil
}

// Insert appends items after the current last position.
func (s *MongoStore) Insert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	n, err := s.Len(ctx)
	if err != nil {
		return err
	}
	docs := make([]any, len(items))
	for i, it := range items {
		docs[i] = mongoItem{Seq: n + i, Item: it}
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert %d items", len(items))
	}
	return nil
}

// Drop removes the collection.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}
