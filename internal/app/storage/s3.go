package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vaultboard/internal/pkg/logx"
)

// s3Store implements Service against S3-compatible object storage.
type s3Store struct {
	cfg      ServiceConfig
	s3Client *s3.Client
	uploader *manager.Uploader
	baseURL  string
}

// newS3Store initializes the S3 client using a custom configuration that
// supports S3-compatible endpoints.
func newS3Store(cfg ServiceConfig) (*s3Store, error) {
	sdkCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		cfg:      cfg,
		s3Client: client,
		uploader: manager.NewUploader(client),
		baseURL:  strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName + "/",
	}, nil
}

// Save uploads the object and returns its path-style public URL.
func (c *s3Store) Save(ctx context.Context, key string, mimeType string, body io.Reader) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &c.cfg.S3BucketName,
		Key:         &key,
		Body:        body,
		ContentType: &mimeType,
	})

	if err != nil {
		logx.Error(err, "S3 upload failed", "key", key)
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	return c.baseURL + key, nil
}

// Delete removes the object behind a URL previously returned by Save.
// URLs outside the bucket are ignored.
func (c *s3Store) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, c.baseURL) {
		return nil
	}

	key := strings.TrimPrefix(url, c.baseURL)

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &key,
	})

	if err != nil {
		logx.Error(err, "S3 delete failed", "key", key)
		return errors.New("failed to delete file from S3")
	}

	return nil
}
