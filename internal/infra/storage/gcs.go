// Package storage uploads product and member images to Google Cloud Storage.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"maltiti/internal/config"

	"cloud.google.com/go/storage"
	"github.com/go-faster/errors"
)

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is required")
)

// GCSにアップロードして公開URLを返す
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSUploader(client *storage.Client, cfg config.StorageConfig) (*GCSUploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errInvalidBucket
	}
	return &GCSUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", errInvalidObject
	}

	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "upload %s", name)
	}
	// Closeでコミットされる
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "upload %s", name)
	}
	return PublicURL(u.baseURL, u.bucket, name), nil
}

// https://storage.googleapis.com/{bucket}/{object}
func PublicURL(baseURL string, bucket string, name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}
