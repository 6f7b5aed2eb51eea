package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds stored models.
const DefaultCollection = "models"

// MongoRepository stores models in a MongoDB collection, one document per
// model keyed by its id.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoRepository connects to uri and uses the models collection of
// database. It pings the server and creates the updated_at index.
func NewMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := &MongoRepository{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
		now:    time.Now,
	}
	_, err = r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return r, nil
}

func (r *MongoRepository) Save(ctx context.Context, m *Model) error {
	if m.ID != "" && m.CreatedAt.IsZero() {
		var existing Summary
		err := r.coll.FindOne(ctx, bson.M{"_id": m.ID},
			options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&existing)
		if err == nil {
			m.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("mongo find: %w", err)
		}
	}
	// BSON stores milliseconds; truncate so the caller's copy matches.
	if err := prepare(m, r.now().UTC().Truncate(time.Millisecond)); err != nil {
		return err
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Model, error) {
	var m Model
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return &m, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"document": 0})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

var _ Repository = (*MongoRepository)(nil)
