/*
Package storage stores the uploaded gallery images.

The default backend writes to the public uploads directory so the files are
served as static assets; an S3-compatible backend is selected when bucket
credentials are configured.
*/
package storage

import (
	"context"
	"io"
)

// ServiceConfig holds the configuration for the artifact storage backends.
type ServiceConfig struct {
	// UploadsDir is the local directory backing the disk store.
	UploadsDir string

	// URLPrefix is the public path prefix for disk-stored files.
	URLPrefix string

	// S3 settings; the S3 backend is used when S3BucketName is set.
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service is the public interface for upload artifact storage.
type Service interface {
	// Save stores the object under key and returns its public URL.
	Save(ctx context.Context, key string, mimeType string, body io.Reader) (string, error)

	// Delete removes the object addressed by the public URL previously
	// returned by Save. Deleting an absent object is not an error.
	Delete(ctx context.Context, url string) error
}

// NewService is the factory function for Service. It picks the S3 backend
// when a bucket is configured and falls back to local disk otherwise.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.S3BucketName != "" {
		return newS3Store(cfg)
	}
	return newDiskStore(cfg)
}
