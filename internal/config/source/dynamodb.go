package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/julienandreu/switchboard/internal/config"
)

// dynamoTableName is fixed: one table, partition key "namespace",
// attribute "config_json".
const dynamoTableName = "SwitchboardConfig"

// DynamoDBSource stores the config JSON blob as a single item per
// namespace in a DynamoDB table.
type DynamoDBSource struct {
	client    *dynamodb.Client
	namespace string
}

// NewDynamoDBSource wraps an already-configured *dynamodb.Client.
func NewDynamoDBSource(client *dynamodb.Client, namespace string) *DynamoDBSource {
	return &DynamoDBSource{client: client, namespace: namespace}
}

func (s *DynamoDBSource) Name() string { return "dynamodb" }

func (s *DynamoDBSource) fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &[]string{dynamoTableName}[0],
		Key: map[string]types.AttributeValue{
			"namespace": &types.AttributeValueMemberS{Value: s.namespace},
		},
	})
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "dynamodb", err)
	}
	if out.Item == nil {
		return nil, config.NewSourceError(config.ErrKindNotFound, "dynamodb", fmt.Errorf("namespace %q not found", s.namespace))
	}
	attr, ok := out.Item["config_json"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, config.NewSourceError(config.ErrKindParse, "dynamodb", fmt.Errorf("config_json attribute missing or wrong type"))
	}
	return []byte(attr.Value), nil
}

func (s *DynamoDBSource) Load(ctx context.Context) (*config.Config, config.Version, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, config.Version{}, err
	}
	return ParseValidateHash(raw, "dynamodb")
}

func (s *DynamoDBSource) HasChanged(ctx context.Context, current config.Version) (bool, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
