// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package storage provides an object storage client backed by MinIO.

It holds the binary payloads of uploaded resources (covers, avatars, chapter
pages) under deterministic object keys, while the relational database keeps
only the resource metadata. Writes to the same key replace the previous
payload, which makes uploads safely repeatable.
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the object storage contract consumed by the resource service.
type ObjectStore interface {
	// Put uploads data under key, replacing any previous payload.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get streams the payload stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the payload stored under key. Missing keys are not an error.
	Remove(ctx context.Context, key string) error
}

// MinioStore implements [ObjectStore] on top of a MinIO (S3-compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// Options carries the connection settings for [NewMinioStore].
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

/*
NewMinioStore connects to the object storage endpoint and ensures the
configured bucket exists.

Parameters:
  - ctx: Context for the initial bucket check.
  - opts: Connection settings.
  - logger: Structured logger for connection events.

Returns:
  - *MinioStore: A ready-to-use store.
  - error: Connection or bucket provisioning failure.
*/
func NewMinioStore(ctx context.Context, opts Options, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket: %w", err)
		}
	}

	logger.Info("object storage connected",
		slog.String("endpoint", opts.Endpoint),
		slog.String("bucket", opts.Bucket),
	)

	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

// Put uploads data under key, replacing any previous payload.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: failed to put object %q: %w", key, err)
	}

	return nil
}

// Get streams the payload stored under key. The caller must close the reader.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to get object %q: %w", key, err)
	}

	return object, nil
}

// HealthCheck verifies the bucket is still reachable. Used by the /ready probe.
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage: bucket %q is missing", s.bucket)
	}

	return nil
}

// Remove deletes the payload stored under key.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: failed to remove object %q: %w", key, err)
	}

	return nil
}
