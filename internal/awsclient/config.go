// Package awsclient loads the shared AWS configuration and builds service clients.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Options selects the region and an optional endpoint override such as LocalStack.
type Options struct {
	Region      string
	EndpointURL string
}

// LoadConfig resolves credentials from the default chain.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	if opts.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(opts.EndpointURL)
	}

	return cfg, nil
}

// Clients bundles the service clients the service may use.
type Clients struct {
	DynamoDB *dynamodb.Client
	SES      *sesv2.Client
	SNS      *sns.Client
	SQS      *sqs.Client
}

// NewClients builds every client from one configuration. Construction makes no calls.
func NewClients(cfg aws.Config) *Clients {
	return &Clients{
		DynamoDB: dynamodb.NewFromConfig(cfg),
		SES:      sesv2.NewFromConfig(cfg),
		SNS:      sns.NewFromConfig(cfg),
		SQS:      sqs.NewFromConfig(cfg),
	}
}
