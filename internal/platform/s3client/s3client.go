// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package s3client builds an S3-compatible object storage client.

Editor output can be materialized into a bucket instead of the WordPress
uploads directory. The client is configured with static credentials and an
optional custom endpoint (R2, MinIO, Garage), and verifies the bucket is
reachable before it is handed to the storage layer.

Usage:

	client, err := s3client.New(ctx, endpoint, accessKey, secretKey,
	    s3client.Region("auto"),
	    s3client.Logger(log),
	)
*/
package s3client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultConnAttempts = 5
	defaultConnTimeout  = time.Second
	defaultRegion       = "auto"
)

// Client wraps the AWS SDK client with its connection settings.
type Client struct {
	connAttempts int
	connTimeout  time.Duration

	endpoint     string
	region       string
	accessKey    string
	secretKey    string
	usePathStyle bool
	bucket       string
	logger       *slog.Logger

	S3 *s3.Client
}

// # Options

// Option configures a [Client].
type Option func(c *Client)

// ConnAttempts sets how many times connecting is tried.
func ConnAttempts(attempts int) Option {
	return func(c *Client) {
		c.connAttempts = attempts
	}
}

// ConnTimeout sets the pause between connection attempts.
func ConnTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connTimeout = timeout
	}
}

// Region sets the signing region.
func Region(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.region = region
		}
	}
}

// UsePathStyle toggles path-style addressing (required by most self-hosted stores).
func UsePathStyle(use bool) Option {
	return func(c *Client) {
		c.usePathStyle = use
	}
}

// Bucket makes the connection check probe this bucket instead of listing all buckets.
func Bucket(bucket string) Option {
	return func(c *Client) {
		c.bucket = bucket
	}
}

// Logger sets the logger for connection attempts.
func Logger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// # Construction

// New connects to the object store, retrying up to the configured attempts.
func New(ctx context.Context, endpoint, accessKey, secretKey string, opts ...Option) (*Client, error) {
	c := &Client{
		connAttempts: defaultConnAttempts,
		connTimeout:  defaultConnTimeout,
		region:       defaultRegion,
		endpoint:     endpoint,
		accessKey:    accessKey,
		secretKey:    secretKey,
		usePathStyle: true,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	for attempt := 1; attempt <= c.connAttempts; attempt++ {
		if err = c.connect(ctx); err == nil {
			break
		}

		c.logger.Warn("s3_connect_retry",
			slog.Int("attempt", attempt),
			slog.Int("attempts_left", c.connAttempts-attempt),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("s3client: %w", ctx.Err())
		case <-time.After(c.connTimeout):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("s3client: connection attempts exhausted: %w", err)
	}

	c.logger.Info("s3_client_connected", slog.String("endpoint", c.endpoint), slog.String("region", c.region))
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(c.region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKey, c.secretKey, ""),
		),
	)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	c.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = c.usePathStyle
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})

	// Check the connection.
	if c.bucket != "" {
		_, err = c.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	} else {
		_, err = c.S3.ListBuckets(ctx, &s3.ListBucketsInput{})
	}
	if err != nil {
		return fmt.Errorf("probe object store: %w", err)
	}

	return nil
}
