// Package mongostore keeps repository analyses in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"codedrip/config"
	"codedrip/logger"
	"codedrip/models"
)

// CollectionName is the collection holding one document per analysis.
const CollectionName = "repos"

const connectTimeout = 10 * time.Second

// document is the stored shape: the analysis fields plus the ObjectID key.
type document struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	models.RepoAnalysis `bson:",inline"`
}

func (d document) analysis() models.RepoAnalysis {
	a := d.RepoAnalysis
	a.ID = d.ID.Hex()
	return a
}

// Store is the MongoDB implementation of the analysis store.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to cfg.URL and verifies the connection with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	logger.Info("Connecting to MongoDB", zap.String("database", cfg.MongoDatabase))
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to MongoDB: %v", models.ErrPersistence, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: failed to ping MongoDB: %v", models.ErrPersistence, err)
	}

	return &Store{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(CollectionName),
	}, nil
}

// ParseID converts a hex identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid id", models.ErrInvalidID, id)
	}
	return oid, nil
}

// Insert stores analysis as a new document and returns its hex id.
func (s *Store) Insert(ctx context.Context, analysis *models.RepoAnalysis) (string, error) {
	doc := document{ID: primitive.NewObjectID(), RepoAnalysis: *analysis}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: failed to store analysis: %v", models.ErrPersistence, err)
	}

	id := doc.ID.Hex()
	logger.Info("Analysis stored",
		zap.String("id", id),
		zap.String("repo", analysis.Basic.FullName))
	return id, nil
}

// FindAll returns every stored analysis in natural order.
func (s *Store) FindAll(ctx context.Context) ([]models.RepoAnalysis, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list analyses: %v", models.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: failed to decode analyses: %v", models.ErrPersistence, err)
	}

	analyses := make([]models.RepoAnalysis, 0, len(docs))
	for _, doc := range docs {
		analyses = append(analyses, doc.analysis())
	}
	return analyses, nil
}

// FindByID returns the analysis stored under id.
func (s *Store) FindByID(ctx context.Context, id string) (*models.RepoAnalysis, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: analysis %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get analysis %s: %v", models.ErrPersistence, id, err)
	}

	analysis := doc.analysis()
	return &analysis, nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
