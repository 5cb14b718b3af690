// Package storage keeps uploaded restaurant images in MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/ids"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage is a thin wrapper around the minio client used by the media
// handler.
type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	expires time.Duration
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	expires := cfg.URLExpires
	if expires <= 0 {
		expires = time.Hour
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, expires: expires}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// SaveImage stores an uploaded image under a generated key and returns the key.
func (s *MinIOStorage) SaveImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ImageKey(filename)
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// URL returns a presigned GET URL for key.
func (s *MinIOStorage) URL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Ready reports whether the bucket is reachable.
func (s *MinIOStorage) Ready(ctx context.Context) bool {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	return err == nil && ok
}

// ImageKey builds "images/<id><ext>" keeping only a short lowercase extension
// from the client's file name.
func ImageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 6 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return "images/" + ids.New("image") + ext
}
