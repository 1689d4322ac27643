// Package service contains services shared by the binaries.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/mmourani/hscode-scraper/internal/config"
)

// ErrStorageDisabled is returned by reads when no bucket is configured.
var ErrStorageDisabled = errors.New("storage is not enabled")

// StorageService publishes generated artifacts to object storage (Tigris/S3-compatible).
type StorageService struct {
	client        *s3.Client
	bucket        string
	productMapKey string
	enabled       bool
	logger        *slog.Logger
}

// NewStorageService creates a new storage service.
func NewStorageService(cfg *appconfig.Config, logger *slog.Logger) (*StorageService, error) {
	if !cfg.StorageEnabled {
		logger.Info("storage service disabled - no bucket configured")
		return &StorageService{
			enabled: false,
			logger:  logger,
		}, nil
	}

	// Load AWS config with static credentials
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.StorageRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Custom endpoint for S3-compatible storage (Tigris, MinIO, etc.)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	logger.Info("storage service initialized",
		"bucket", cfg.StorageBucket,
		"endpoint", cfg.StorageEndpoint,
	)

	return &StorageService{
		client:        client,
		bucket:        cfg.StorageBucket,
		productMapKey: cfg.ProductMapKey,
		enabled:       true,
		logger:        logger,
	}, nil
}

// IsEnabled returns whether storage is configured and available.
func (s *StorageService) IsEnabled() bool {
	return s.enabled
}

// Bucket returns the configured bucket name.
func (s *StorageService) Bucket() string {
	return s.bucket
}

// ProductMapKey returns the object key the product map is published under.
func (s *StorageService) ProductMapKey() string {
	return s.productMapKey
}

// PublishProductMap uploads the encoded product map. It is a no-op returning
// an empty key when storage is disabled.
func (s *StorageService) PublishProductMap(ctx context.Context, data []byte) (string, error) {
	if !s.enabled {
		return "", nil
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.productMapKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"generated-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish product map: %w", err)
	}

	s.logger.Info("published product map",
		"key", s.productMapKey,
		"size_bytes", len(data),
	)
	return s.productMapKey, nil
}

// FetchProductMap downloads the published product map.
func (s *StorageService) FetchProductMap(ctx context.Context) ([]byte, error) {
	if !s.enabled {
		return nil, ErrStorageDisabled
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.productMapKey),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product map: %w", err)
	}
	defer func() { _ = output.Body.Close() }()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product map: %w", err)
	}
	return data, nil
}

// ProductMapURL returns a presigned download URL for the published product map.
// The URL is valid for expiry (default 1 hour).
func (s *StorageService) ProductMapURL(ctx context.Context, expiry time.Duration) (string, error) {
	if !s.enabled {
		return "", ErrStorageDisabled
	}
	if expiry == 0 {
		expiry = 1 * time.Hour
	}

	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.productMapKey),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
