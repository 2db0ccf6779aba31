package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

// Config describes the MinIO bucket used for audio.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Service uploads audio recordings to a MinIO (or any S3-compatible) bucket.
type Service struct {
	client    *miniogo.Client
	bucket    string
	publicURL string
	logger    zerolog.Logger
}

// New constructs a MinIO uploader.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint, credentials and bucket must be provided")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &Service{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		logger:    logger.With().Str("component", "minio").Logger(),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.logger.Info().Str("bucket", s.bucket).Msg("bucket created")
	return nil
}

// Upload stores the recording and returns its public URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	start := time.Now()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	key := objectKey(name)
	contentType := mimetype.Detect(data).String()

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		observability.AudioUploadLatency().WithLabelValues("minio", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	observability.AudioUploadLatency().WithLabelValues("minio", "ok").Observe(time.Since(start).Seconds())
	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("audio uploaded to minio")

	return s.URL(key), nil
}

// URL returns the public URL of an object key.
func (s *Service) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

// objectKey keeps the caller's folder and extension and makes the file name unique.
func objectKey(name string) string {
	name = strings.Trim(name, "/")
	dir, file := path.Split(name)
	ext := path.Ext(file)
	if ext == "" {
		ext = ".bin"
	}
	return path.Join(dir, uuid.NewString()+ext)
}
