package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupMongoDBSource starts a disposable MongoDB container, following
// the same testcontainers-per-test pattern used for Postgres.
func setupMongoDBSource(t *testing.T) *MongoDBSource {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return NewMongoDBSource(client, "switchboard_test", "tenant-a")
}

func TestMongoDBSource_NotFound(t *testing.T) {
	s := setupMongoDBSource(t)
	_, _, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestMongoDBSource_LoadAndHasChanged(t *testing.T) {
	s := setupMongoDBSource(t)
	ctx := context.Background()

	_, err := s.collection.InsertOne(ctx, mongoConfigDoc{ID: "tenant-a", ConfigJSON: redisConfigJSON})
	require.NoError(t, err)

	cfg, v1, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "/a", cfg.Routes[0].Path)

	changed, err := s.HasChanged(ctx, v1)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = s.collection.UpdateOne(ctx,
		bson.M{"_id": "tenant-a"},
		bson.M{"$set": bson.M{"config_json": redisConfigJSON + " "}})
	require.NoError(t, err)

	changed, err = s.HasChanged(ctx, v1)
	require.NoError(t, err)
	require.True(t, changed)
}
