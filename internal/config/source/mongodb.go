package source

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/julienandreu/switchboard/internal/config"
)

// mongoConfigDoc is the single document shape this backend stores: "_id"
// is the namespace, "config_json" is the JSON blob.
type mongoConfigDoc struct {
	ID         string `bson:"_id"`
	ConfigJSON string `bson:"config_json"`
}

// MongoDBSource stores the config JSON blob in a single collection keyed
// by namespace.
type MongoDBSource struct {
	collection *mongo.Collection
	namespace  string
}

// NewMongoDBSource wraps an already-connected *mongo.Client's
// "switchboard_configs" collection in database db.
func NewMongoDBSource(client *mongo.Client, db, namespace string) *MongoDBSource {
	return &MongoDBSource{
		collection: client.Database(db).Collection("switchboard_configs"),
		namespace:  namespace,
	}
}

func (s *MongoDBSource) Name() string { return "mongodb" }

func (s *MongoDBSource) fetch(ctx context.Context) ([]byte, error) {
	var doc mongoConfigDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": s.namespace}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, config.NewSourceError(config.ErrKindNotFound, "mongodb", fmt.Errorf("namespace %q not found", s.namespace))
	}
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "mongodb", err)
	}
	return []byte(doc.ConfigJSON), nil
}

func (s *MongoDBSource) Load(ctx context.Context) (*config.Config, config.Version, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, config.Version{}, err
	}
	return ParseValidateHash(raw, "mongodb")
}

func (s *MongoDBSource) HasChanged(ctx context.Context, current config.Version) (bool, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
