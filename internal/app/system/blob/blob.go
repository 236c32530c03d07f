// Package blob stores user-uploaded binary content (profile pictures) in an
// S3-compatible bucket and hands back public URLs for the documents that
// reference them.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config carries the bucket settings from app configuration.
type Config struct {
	Region  string
	Bucket  string
	Prefix  string // key prefix, e.g. "profile-pictures"
	BaseURL string // public base URL; defaults to the bucket's virtual-host URL
}

// Store uploads objects to one bucket under one key prefix.
type Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

// New builds a Store using the ambient AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: baseURL,
	}, nil
}

// Put uploads body under a fresh key derived from owner and returns the
// public URL. The uuid suffix makes each upload a new object, so stale CDN
// caches never serve a replaced picture.
func (s *Store) Put(ctx context.Context, owner string, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("%s-%s", owner, uuid.NewString())
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blob: upload %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}
