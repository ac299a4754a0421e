// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the part of the S3 client the sink uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads output to a bucket, keyed by the same relative path it
// would have on disk.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Sink uploads into bucket. prefix may be empty.
func NewS3Sink(client objectPutter, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for relativePath.
func (sink *S3Sink) Key(relativePath string) string {
	return path.Join(sink.prefix, strings.TrimLeft(relativePath, "/"))
}

// Put buffers body so the request can be signed, then uploads it.
func (sink *S3Sink) Put(ctx context.Context, relativePath, contentType string, body io.Reader) error {
	payload, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", relativePath, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(sink.bucket),
		Key:           aws.String(sink.Key(relativePath)),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := sink.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: upload s3://%s/%s: %w", sink.bucket, *input.Key, err)
	}
	return nil
}
