// Package store persists analyzed graph documents. The MongoDB backend keeps
// one record per run, keyed by run ID, so past analyses of a repository can
// be reloaded and diffed without re-parsing the sources.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	atlaserrors "github.com/matzehuels/codeatlas/pkg/errors"
	"github.com/matzehuels/codeatlas/pkg/graph"
)

const (
	defaultDatabase   = "codeatlas"
	defaultCollection = "graphs"
)

// Record is one stored analysis run.
type Record struct {
	RunID     string         `bson:"run_id"`
	Root      string         `bson:"root"`
	Language  string         `bson:"language"`
	CreatedAt time.Time      `bson:"created_at"`
	Document  graph.Document `bson:"document"`
}

// MongoStore persists graph documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB instance at uri and prepares the
// graphs collection with a unique index on run_id.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(defaultDatabase).Collection(defaultCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Save stores one analysis run.
func (s *MongoStore) Save(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}

// Load retrieves a run by its ID. Returns ErrCodeGraphNotFound when absent.
func (s *MongoStore) Load(ctx context.Context, runID string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"run_id": runID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, atlaserrors.New(atlaserrors.ErrCodeGraphNotFound, "run %s not found", runID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	return rec, nil
}

// List returns the most recent runs for a root path, newest first.
func (s *MongoStore) List(ctx context.Context, root string, limit int64) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{"root": root}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer cur.Close(ctx)

	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return recs, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
