// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package storage holds catalog images in an S3-compatible object store.
// Catalog documents keep the public URL; the object key is recovered from
// it when an image is deleted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/metrics"
	"github.com/tomtom215/weddingbook/internal/models"
)

// ImageStore uploads and deletes images by opaque key.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
	Delete(ctx context.Context, url string) error
}

// AllowedContentTypes maps accepted upload types to file extensions.
var AllowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// NewKey builds an object key for an image of entity (e.g. "venue") with
// the given content type.
func NewKey(entity, contentType string) (string, error) {
	ext, ok := AllowedContentTypes[contentType]
	if !ok {
		return "", models.NewValidationError("unsupported image type %q", contentType)
	}
	return path.Join("catalog", entity, uuid.NewString()+ext), nil
}

// s3API is the part of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ImageStore on S3 or any S3-compatible endpoint.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Store loads credentials from the default AWS chain. Endpoint and
// UsePathStyle allow MinIO and similar services.
func NewS3Store(ctx context.Context, cfg *config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for S3: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client s3API, cfg *config.StorageConfig) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		switch {
		case cfg.Endpoint != "":
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: base}
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	metrics.RecordImageOperation("upload", err)
	if err != nil {
		return "", models.NewExternalServiceError("object store", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside this store are
// ignored.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordImageOperation("delete", err)
	if err != nil {
		return models.NewExternalServiceError("object store", err)
	}
	return nil
}

// KeyFromURL strips the public base URL.
func (s *S3Store) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Disabled is used when no bucket is configured: uploads fail and deletes
// succeed without doing anything.
type Disabled struct{}

var errNoBucket = errors.New("image storage is not configured")

func (Disabled) Upload(context.Context, string, string, io.ReadSeeker) (string, error) {
	return "", models.NewExternalServiceError("object store", errNoBucket)
}

func (Disabled) Delete(context.Context, string) error { return nil }

// New returns the S3 store when a bucket is configured and Disabled
// otherwise.
func New(ctx context.Context, cfg *config.StorageConfig) (ImageStore, error) {
	if cfg.Bucket == "" {
		return Disabled{}, nil
	}
	return NewS3Store(ctx, cfg)
}
