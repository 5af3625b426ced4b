// Package upload stores request images in Supabase Storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("upload storage not configured")
	ErrNotImage      = errors.New("file is not a supported image")
	ErrTooLarge      = errors.New("file too large")
	ErrUpload        = errors.New("upload failed")
)

const MaxSize = 5 << 20

var allowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Storage is the part of the storage-go client we use.
type Storage interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

type Client struct {
	storage Storage
	log     *zap.Logger
}

// NewSupabase builds a client for the project at supabaseURL. An empty URL or
// key yields a client whose uploads fail with ErrNotConfigured.
func NewSupabase(supabaseURL, key string, log *zap.Logger) *Client {
	if supabaseURL == "" || key == "" {
		return New(nil, log)
	}
	storageURL := strings.TrimRight(supabaseURL, "/") + "/storage/v1"
	return New(storage_go.NewClient(storageURL, key, nil), log)
}

func New(storage Storage, log *zap.Logger) *Client {
	return &Client{storage: storage, log: log.Named("upload")}
}

// Upload stores data under dir in bucket and returns its public URL. The
// object name is generated; only the extension follows the detected type.
func (c *Client) Upload(ctx context.Context, bucket, dir string, data []byte) (string, error) {
	if c.storage == nil {
		return "", ErrNotConfigured
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	contentType := mt.String()
	upsert := false
	objectPath := path.Join(dir, uuid.NewString()+mt.Extension())

	_, err := c.storage.UploadFile(bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		c.log.Error("upload failed", zap.String("bucket", bucket), zap.String("path", objectPath), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	url := c.storage.GetPublicUrl(bucket, objectPath).SignedURL
	c.log.Info("file uploaded", zap.String("bucket", bucket), zap.String("path", objectPath))
	return url, nil
}
