// Package storage persists generated documents (contract text) in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStore saves a document and returns the URL it can be fetched from.
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type Config struct {
	Bucket   string
	Region   string
	Endpoint string // set for MinIO / localstack
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3 builds a store using the default AWS credential chain.
func NewS3(ctx context.Context, cfg Config) (DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("documents bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Store{client: client, bucket: cfg.Bucket, baseURL: objectBaseURL(cfg)}, nil
}

func (s *s3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

func objectBaseURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

type nopStore struct{}

// Nop keeps nothing and returns an empty URL.
func Nop() DocumentStore { return nopStore{} }

func (nopStore) Put(context.Context, string, string, []byte) (string, error) { return "", nil }

// MemoryStore keeps documents in a map; used by tests and local runs.
type MemoryStore struct {
	Objects map[string][]byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{Objects: map[string][]byte{}} }

func (m *MemoryStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.Objects[key] = append([]byte(nil), body...)
	return "memory://" + key, nil
}
