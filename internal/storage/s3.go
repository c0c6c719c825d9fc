package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/predicare/voicebot/internal/config"
)

type s3Store struct {
	client *minio.Client
	bucket string
	host   string
}

// NewS3Store uploads artifacts to an S3-compatible bucket and returns
// public object URLs.
func NewS3Store(cfg *config.Config) (ArtifactStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: true,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.S3Bucket)
	}

	return &s3Store{
		client: client,
		bucket: cfg.S3Bucket,
		host:   fmt.Sprintf("https://%s", cfg.S3Endpoint),
	}, nil
}

func (s *s3Store) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	name = filepath.Base(name)

	// size = -1 → the client streams without knowing length up front
	_, err := s.client.PutObject(ctx, s.bucket, name, r, -1, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return s.buildPublicURL(name), nil
}

func (s *s3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	name = filepath.Base(name)

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", name, err)
	}

	// GetObject is lazy: stat now so a missing object errors here, not
	// halfway through streaming.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %q: %w", name, err)
	}

	return obj, nil
}

func (s *s3Store) buildPublicURL(key string) string {
	escapedKey := url.PathEscape(key)
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, escapedKey)
}
