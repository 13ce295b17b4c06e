package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stylusnotes/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoCollection = "stylus_notes"

// MongoNoteStore implements domain.StylusNoteStore on a MongoDB collection.
type MongoNoteStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB and ensures the folder index exists.
func OpenMongo(ctx context.Context, opts Options) (*MongoNoteStore, error) {
	uri := buildMongoURI(opts)
	dbName := opts.Database
	if dbName == "" {
		dbName = "stylusnotes"
	}

	logURI := uri
	if opts.Password != "" {
		logURI = strings.ReplaceAll(logURI, opts.Password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s", logURI)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(dbName).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "folder", Value: 1}}})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create folder index: %w", err)
	}
	return &MongoNoteStore{client: client, coll: coll}, nil
}

// Close disconnects the client.
func (s *MongoNoteStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoNoteStore) CreateNote(ctx context.Context, n *domain.StylusNote) error {
	n.Normalize()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert stylus note: %w", err)
	}
	return nil
}

func (s *MongoNoteStore) GetNote(ctx context.Context, id string) (*domain.StylusNote, error) {
	var n domain.StylusNote
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stylus note: %w", err)
	}
	n.Normalize()
	return &n, nil
}

func (s *MongoNoteStore) ListNotes(ctx context.Context, folder string) ([]domain.StylusNote, error) {
	filter := bson.M{}
	if folder != "" {
		filter["folder"] = folder
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list stylus notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []domain.StylusNote{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode stylus notes: %w", err)
	}
	for i := range notes {
		notes[i].Normalize()
	}
	return notes, nil
}

func (s *MongoNoteStore) UpdateNote(ctx context.Context, n *domain.StylusNote) error {
	n.Normalize()
	n.UpdatedAt = time.Now().UTC()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return fmt.Errorf("update stylus note: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (s *MongoNoteStore) DeleteNote(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete stylus note: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
