package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
)

// IDocumentStorage stores verification documents.
type IDocumentStorage interface {
	PutDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (string, error)
	PresignGetURL(ctx context.Context, key string) (string, error)
}

// s3Storage implements IDocumentStorage on a single bucket.
type s3Storage struct {
	bucket        string
	urlTTL        time.Duration
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 document storage.
func NewS3Storage(cfg *config.Config) (IDocumentStorage, error) {
	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		bucket:        cfg.AwsS3Bucket,
		urlTTL:        cfg.DocumentURLTTL,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// DocumentKey returns the object key for a document: documents/<verification>/<uuid>_<name>.
func DocumentKey(verificationID, filename string) string {
	name := sanitizeFilename(filename)
	return fmt.Sprintf("documents/%s/%s_%s", verificationID, uuid.NewString(), name)
}

func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." || name == "_" {
		return "document"
	}
	return name
}

// PutDocument uploads data and returns its object key.
func (s *s3Storage) PutDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (string, error) {
	key := DocumentKey(verificationID, filename)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"verification-id": verificationID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document %s: %w", key, err)
	}
	return key, nil
}

// PresignGetURL returns a time-limited download URL for key.
func (s *s3Storage) PresignGetURL(ctx context.Context, key string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign document %s: %w", key, err)
	}
	return req.URL, nil
}
