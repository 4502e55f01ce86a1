package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julienandreu/switchboard/internal/config/source"
)

// buildSource constructs a Source from a backend identifier and its
// location string. File backends (yaml/json/toml) take a path; database
// backends take a connection string.
func buildSource(ctx context.Context, backend, location, namespace string) (source.Source, error) {
	switch strings.ToLower(backend) {
	case "yaml", "yml":
		return source.NewYAMLSource(location), nil
	case "json":
		return source.NewJSONSource(location), nil
	case "toml":
		return source.NewTOMLSource(location), nil
	case "postgres", "postgresql":
		return source.NewPostgresSource(ctx, location, namespace)
	case "sqlite":
		return source.NewSQLiteSource(ctx, location, namespace)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: location})
		return source.NewRedisSource(client, namespace), nil
	case "mongodb", "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(location))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		return source.NewMongoDBSource(client, "switchboard", namespace), nil
	case "dynamodb":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return source.NewDynamoDBSource(dynamodb.NewFromConfig(cfg), namespace), nil
	case "":
		if location == "" {
			return nil, fmt.Errorf("no config source backend specified")
		}
		return buildSource(ctx, inferFileBackend(location), location, namespace)
	default:
		return nil, fmt.Errorf("unknown config source backend %q", backend)
	}
}

// inferFileBackend guesses a file source's format from its extension,
// used when --backend is left unset for a --source path.
func inferFileBackend(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}
