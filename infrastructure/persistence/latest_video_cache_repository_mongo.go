package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
)

const latestVideoCacheCollection = "latest_video_cache"

type latestVideoCacheDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// LatestVideoCacheRepositoryMongo stores rendered payloads in a MongoDB collection.
// A nil collection turns every operation into a no-op miss.
type LatestVideoCacheRepositoryMongo struct {
	collection *mongo.Collection
}

var _ repository.ILatestVideoCache = (*LatestVideoCacheRepositoryMongo)(nil)

// NewLatestVideoCacheRepositoryMongo uses the latest_video_cache collection of database name
func NewLatestVideoCacheRepositoryMongo(client *mongo.Client, name string) *LatestVideoCacheRepositoryMongo {
	if client == nil {
		return &LatestVideoCacheRepositoryMongo{}
	}
	return &LatestVideoCacheRepositoryMongo{collection: client.Database(name).Collection(latestVideoCacheCollection)}
}

// EnsureIndexes lets the server drop documents once expires_at has passed
func (r *LatestVideoCacheRepositoryMongo) EnsureIndexes(ctx context.Context) error {
	if r.collection == nil {
		return nil
	}
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

func (r *LatestVideoCacheRepositoryMongo) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if r.collection == nil {
		return nil, nil
	}
	var doc latestVideoCacheDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// the TTL monitor runs about once a minute
	entry := &model.CacheEntry{Key: doc.Key, Payload: doc.Payload, ExpiresAt: doc.ExpiresAt}
	if entry.Expired(time.Now()) {
		return nil, nil
	}
	return entry, nil
}

func (r *LatestVideoCacheRepositoryMongo) Set(ctx context.Context, entry *model.CacheEntry, _ time.Duration) error {
	if r.collection == nil || entry == nil {
		return nil
	}
	doc := latestVideoCacheDocument{
		Key:       entry.Key,
		Payload:   entry.Payload,
		ExpiresAt: entry.ExpiresAt.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: entry.Key}}, doc, options.Replace().SetUpsert(true))
	return err
}
