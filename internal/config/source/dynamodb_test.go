package source

import (
	"context"
	"fmt"
	"testing"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupDynamoDBSource starts a disposable dynamodb-local container. No
// official testcontainers module exists for it, so this falls back to a
// plain GenericContainer request.
func setupDynamoDBSource(t *testing.T) *DynamoDBSource {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "amazon/dynamodb-local:2.5.2",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
		WaitingFor:   wait.ForListeningPort("8000/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8000/tcp")
	require.NoError(t, err)
	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	require.NoError(t, err)

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = &endpoint
	})

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: strPtr(dynamoTableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: strPtr("namespace"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: strPtr("namespace"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	return NewDynamoDBSource(client, "tenant-a")
}

func strPtr(s string) *string { return &s }

func TestDynamoDBSource_NotFound(t *testing.T) {
	s := setupDynamoDBSource(t)
	_, _, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestDynamoDBSource_LoadAndHasChanged(t *testing.T) {
	s := setupDynamoDBSource(t)
	ctx := context.Background()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: strPtr(dynamoTableName),
		Item: map[string]types.AttributeValue{
			"namespace":   &types.AttributeValueMemberS{Value: "tenant-a"},
			"config_json": &types.AttributeValueMemberS{Value: redisConfigJSON},
		},
	})
	require.NoError(t, err)

	cfg, v1, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "/a", cfg.Routes[0].Path)

	changed, err := s.HasChanged(ctx, v1)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: strPtr(dynamoTableName),
		Item: map[string]types.AttributeValue{
			"namespace":   &types.AttributeValueMemberS{Value: "tenant-a"},
			"config_json": &types.AttributeValueMemberS{Value: redisConfigJSON + " "},
		},
	})
	require.NoError(t, err)

	changed, err = s.HasChanged(ctx, v1)
	require.NoError(t, err)
	require.True(t, changed)
}
