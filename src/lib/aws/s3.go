package aws

import (
	"clubdesk/src/config"
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("assets bucket is not configured")

var s3Client *s3.Client

func GetS3Client(ctx context.Context) (*s3.Client, error) {
	if s3Client != nil {
		return s3Client, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil, err
	}
	s3Client = s3.NewFromConfig(cfg)
	return s3Client, nil
}

func StorageEnabled() bool {
	return config.AssetsBucket() != ""
}

// S3UploadAsset stores body under key and returns a presigned download URL.
func S3UploadAsset(ctx context.Context, key string, body io.Reader, contentType string, expires time.Duration) (*string, error) {
	assetsBucket := config.AssetsBucket()
	if assetsBucket == "" {
		return nil, ErrStorageDisabled
	}
	client, err := GetS3Client(ctx)
	if err != nil {
		return nil, err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(assetsBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, assetsBucket)
	return S3PresignAsset(ctx, key, expires)
}

func S3PresignAsset(ctx context.Context, key string, expires time.Duration) (*string, error) {
	assetsBucket := config.AssetsBucket()
	if assetsBucket == "" {
		return nil, ErrStorageDisabled
	}
	client, err := GetS3Client(ctx)
	if err != nil {
		return nil, err
	}
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(assetsBucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = expires
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return nil, err
	}
	return &r.URL, nil
}
