package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 compatible bucket. Endpoint is set for MinIO and similar
// services and switches to path style addressing.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// AwsS3 stores images as objects in one bucket.
type AwsS3 struct {
	client *s3.Client
	opts   S3Options
}

// NewAwsS3 builds the client from static credentials when given, otherwise from the
// default AWS credential chain.
func NewAwsS3(ctx context.Context, opts S3Options) (*AwsS3, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &AwsS3{client: client, opts: opts}, nil
}

// Put uploads data under key and returns the public link.
func (s *AwsS3) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.GetPublicLinkKey(key), nil
}

// Delete removes the object behind url. URLs outside the bucket are ignored.
func (s *AwsS3) Delete(ctx context.Context, url string) error {
	key := s.GetObjectKeyFromLink(url)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// GetPublicLinkKey returns the URL an object is served from.
func (s *AwsS3) GetPublicLinkKey(key string) string {
	return s.linkPrefix() + key
}

// GetObjectKeyFromLink is the inverse of GetPublicLinkKey.
func (s *AwsS3) GetObjectKeyFromLink(link string) string {
	key, ok := strings.CutPrefix(link, s.linkPrefix())
	if !ok {
		return ""
	}
	return key
}

func (s *AwsS3) linkPrefix() string {
	if s.opts.Endpoint != "" {
		return strings.TrimSuffix(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.opts.Bucket, s.opts.Region)
}
