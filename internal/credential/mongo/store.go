package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential"
	"github.com/amlaw/client-portal/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store looks clients up by document _id
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open is the credential.Factory for the mongo driver
func Open(ctx context.Context, cfg *config.Config) (credential.Backend, error) {
	mc := cfg.Credentials.Mongo

	clientOpts := options.Client().ApplyURI(mc.URI)
	if mc.Timeout > 0 {
		clientOpts.SetConnectTimeout(mc.Timeout)
		clientOpts.SetTimeout(mc.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{
		client:     client,
		collection: client.Database(mc.Database).Collection(mc.Collection),
	}, nil
}

func (s *Store) Driver() string { return "mongo" }

func (s *Store) Exists(ctx context.Context, clientID string) (bool, error) {
	return credential.Exists(ctx, s, clientID)
}

func (s *Store) Get(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	var c domain.ClientProfile
	err := s.collection.FindOne(ctx, bson.M{"_id": clientID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &c, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
