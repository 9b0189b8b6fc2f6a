package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

func GetSESClient(ctx context.Context) (*ses.Client, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(*cfg), nil
}

func SESSendMessage(ctx context.Context, from string, to []string, subject, body string, html bool) (string, error) {
	c, err := GetSESClient(ctx)
	if err != nil {
		return "", err
	}
	content := &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")}
	msgBody := &types.Body{Text: content}
	if html {
		msgBody = &types.Body{Html: content}
	}
	out, err := c.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    msgBody,
		},
	})
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return "", err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return aws.ToString(out.MessageId), nil
}
