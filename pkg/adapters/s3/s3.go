// Package s3 stores keys as objects of an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aretw0/noteease/pkg/core"
)

// Config holds the configuration for the S3 backend.
type Config struct {
	// Endpoint is the S3 endpoint URL. Leave empty to use AWS S3.
	Endpoint string
	// Region is the bucket region (e.g. "us-east-1").
	Region string
	// AccessKeyID and SecretAccessKey are optional static credentials;
	// the default AWS credential chain is used when they are empty.
	AccessKeyID     string
	SecretAccessKey string
	// Bucket holds the objects.
	Bucket string
	// Prefix is prepended to every key (e.g. "devices/phone-1/").
	Prefix string
	// UsePathStyle enables path-style addressing (required by some
	// S3-compatible services and by gofakes3).
	UsePathStyle bool
}

// KV implements core.KV with one object per key.
type KV struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3 backend from configuration.
func New(ctx context.Context, cfg Config) (*KV, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewFromClient wraps an existing S3 client.
func NewFromClient(client *s3.Client, bucket, prefix string) *KV {
	return &KV{client: client, bucket: bucket, prefix: prefix}
}

// Initialize checks that the bucket is reachable.
func (k *KV) Initialize(ctx context.Context) error {
	_, err := k.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(k.bucket)})
	if err != nil {
		return fmt.Errorf("s3: bucket %q is not reachable: %w", k.bucket, err)
	}
	return nil
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := k.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(k.bucket),
		Key:    aws.String(k.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3: failed to get object %q: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3: failed to read object body %q: %w", key, err)
	}
	return data, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(k.bucket),
		Key:         aws.String(k.prefix + key),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("s3: failed to put object %q: %w", key, err)
	}
	return nil
}

// Close implements core.KV. The SDK client holds no resources to release.
func (k *KV) Close() error {
	return nil
}

// ComponentType implements introspection.Component.
func (k *KV) ComponentType() string {
	return "s3"
}

var _ core.KV = (*KV)(nil)
var _ core.Initializer = (*KV)(nil)
