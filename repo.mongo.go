package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type mongoBookStorage struct {
	logger     *zap.Logger
	client     *mongo.Client
	collection *mongo.Collection
}

// GetMongoClient provides a ready to use mongo client. The connection
// is tested once with a ping before being handed over.
func GetMongoClient(config *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to build the mongo client: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// NewMongoBookStorage provides an instance of mongo-based book storage.
func NewMongoBookStorage(logger *zap.Logger, config *Config, client *mongo.Client) BookStorage {
	return &mongoBookStorage{
		logger:     logger,
		client:     client,
		collection: client.Database(config.Mongo.Database).Collection(config.Mongo.Collection),
	}
}

// Add inserts a new book record.
func (ms *mongoBookStorage) Add(ctx context.Context, book Book) error {
	_, err := ms.collection.InsertOne(ctx, book)
	return err
}

// GetOne retrieves a book record based on its ID.
func (ms *mongoBookStorage) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	var book Book
	err := ms.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return book, ErrBookNotFound
	}
	return book, err
}

// GetAll retrieves a list of all books stored in the collection,
// in store-native order.
func (ms *mongoBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	cursor, err := ms.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	books := []Book{}
	if err = cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Update applies the given fields to an existing book record within a single
// `$set` call and returns the post-update document. Fields absent from the
// map are left untouched.
func (ms *mongoBookStorage) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error) {
	var book Book
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := ms.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)}, opts).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return book, ErrBookNotFound
	}
	return book, err
}

// Delete removes a book record based on its ID. A zero deleted count
// means the document was already gone.
func (ms *mongoBookStorage) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Search retrieves every book whose title or author contains the query as a
// case-insensitive substring. The query is quoted so regex metacharacters
// coming from the caller stay literal.
func (ms *mongoBookStorage) Search(ctx context.Context, query string) ([]Book, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"author": pattern},
	}}
	cursor, err := ms.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	books := []Book{}
	if err = cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Ping checks the store reachability.
func (ms *mongoBookStorage) Ping(ctx context.Context) error {
	return ms.client.Ping(ctx, readpref.Primary())
}
