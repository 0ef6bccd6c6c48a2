// internal/common/aws/bedrock.go
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type BedrockClient struct {
	client *bedrockruntime.Client
}

func NewBedrockClient(ctx context.Context, region string) (*BedrockClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &BedrockClient{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

// InvokeModel submits a JSON payload to the given model and returns the raw response body.
func (c *BedrockClient) InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error) {
	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     awssdk.String(modelID),
		Body:        payload,
		ContentType: awssdk.String("application/json"),
		Accept:      awssdk.String("application/json"),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
