package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSPublisher struct {
	TopicArn string
	inner    *sns.Client
}

func NewSNSPublisher(ctx context.Context, topicArn string) (*SNSPublisher, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{TopicArn: topicArn, inner: sns.NewFromConfig(*cfg)}, nil
}

// Publish sends message to the topic with a string "type" attribute for subscription filters.
func (p *SNSPublisher) Publish(ctx context.Context, kind string, message string) (string, error) {
	output, err := p.inner.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.TopicArn),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(kind),
			},
		},
	})
	if err != nil {
		log.Printf("Error publishing to topic [%s]: %s\n", p.TopicArn, err.Error())
		return "", err
	}
	return aws.ToString(output.MessageId), nil
}
