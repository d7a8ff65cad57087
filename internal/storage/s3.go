package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ProofStorage stores proof images and hands back the public URL recorded on
// the proof row.
type ProofStorage interface {
	UploadProofImage(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error)
}

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores
	PublicBaseURL   string // optional override for public object URLs
}

type s3Storage struct {
	cfg    Config
	client *s3.Client
}

func NewS3Storage(ctx context.Context, cfg Config) (ProofStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cfg.Region),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{cfg: cfg, client: client}, nil
}

// UploadProofImage writes the image under proofs/<user>-<timestamp>-proof
// and returns its public URL.
func (s *s3Storage) UploadProofImage(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("proofs/%s-%d-proof%s", userID, time.Now().UnixMilli(), extensionFor(contentType))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof image %s: %w", key, err)
	}

	return s.publicURL(key), nil
}

func (s *s3Storage) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
