package aws

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var s3Client *s3.Client

func GetS3Client(ctx context.Context) (*s3.Client, error) {
	if s3Client != nil {
		return s3Client, nil
	}
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	s3Client = s3.NewFromConfig(*cfg)
	return s3Client, nil
}

func S3PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	client, err := GetS3Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return err
	}
	err = s3.NewObjectExistsWaiter(client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, bucket)
	return nil
}

// S3DeleteObject removes the object. A missing key is not an error.
func S3DeleteObject(ctx context.Context, bucket, key string) error {
	client, err := GetS3Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		log.Printf("Could not delete object %s from bucket %s: %s\n", key, bucket, err.Error())
		return err
	}
	return nil
}
