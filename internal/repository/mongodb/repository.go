// Package mongodb is the remote persistence adapter. The farm state lives in
// a single upserted document; daily dashboard snapshots append to their own
// collection.
package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

const (
	stateCollection    = "farm_state"
	snapshotCollection = "daily_snapshots"
	stateDocumentID    = "current"
)

// stateDocument wraps the JSON-encoded farm state. Encoding through JSON
// keeps decimal amounts exact and the document shape identical to the local
// file backend.
type stateDocument struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoDBRepository implements the Store interface plus snapshot writes.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects and pings the database.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// Load fetches the state document. No document yet means an empty state.
func (r *MongoDBRepository) Load(ctx context.Context) (models.FarmState, error) {
	var state models.FarmState

	collection := r.client.Database(r.dbName).Collection(stateCollection)

	var doc stateDocument
	err := collection.FindOne(ctx, bson.M{"_id": stateDocumentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			state.Normalize()
			return state, nil
		}
		return models.FarmState{}, fmt.Errorf("load farm state document: %w", err)
	}

	if err := json.Unmarshal([]byte(doc.Payload), &state); err != nil {
		return models.FarmState{}, fmt.Errorf("decode farm state payload: %w", err)
	}

	state.Normalize()
	return state, nil
}

// Save upserts the full state document.
func (r *MongoDBRepository) Save(ctx context.Context, state models.FarmState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode farm state: %w", err)
	}

	doc := stateDocument{
		ID:        stateDocumentID,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}

	collection := r.client.Database(r.dbName).Collection(stateCollection)
	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, bson.M{"_id": stateDocumentID}, doc, opts); err != nil {
		return fmt.Errorf("upsert farm state document: %w", err)
	}
	return nil
}

// SaveDailySnapshot appends a dashboard snapshot to the database.
func (r *MongoDBRepository) SaveDailySnapshot(ctx context.Context, snapshot models.DailySnapshot) error {
	collection := r.client.Database(r.dbName).Collection(snapshotCollection)
	if _, err := collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert daily snapshot: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
