package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Storage struct {
	client   s3iface.S3API
	bucket   string
	endpoint string
}

// NewS3Storage signs against AWS S3, or against endpoint (path-style) when set.
func NewS3Storage(sess *session.Session, bucket, endpoint string) *S3Storage {
	cfg := aws.NewConfig()
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	return &S3Storage{client: s3.New(sess, cfg), bucket: bucket, endpoint: endpoint}
}

// PresignedUploadURL signs a PUT for key. Signing is local; no request is sent.
func (s *S3Storage) PresignedUploadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, _ := s.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)
	u, err := req.Presign(expires)
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return u, nil
}

// ObjectURL matches the addressing style the upload was signed with.
func (s *S3Storage) ObjectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
