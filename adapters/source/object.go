package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxObjectBytes bounds a single object download
const maxObjectBytes = 512 << 20

// splitBucketKey parses scheme://bucket/key
func splitBucketKey(locator string) (bucket, key string, err error) {
	_, rest, ok := strings.Cut(locator, "://")
	if !ok {
		return "", "", fmt.Errorf("locator %q has no scheme", locator)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("locator %q must be scheme://bucket/key", locator)
	}
	return bucket, key, nil
}

// S3Source reads s3://bucket/key objects using the default AWS credential chain
type S3Source struct {
	once   sync.Once
	client *s3.Client
	err    error
}

// NewS3Source creates an S3 source; the client is built on first use
func NewS3Source() *S3Source {
	return &S3Source{}
}

func (s *S3Source) init(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			s.err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg)
	})
	return s.client, s.err
}

// Open downloads the object
func (s *S3Source) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	bucket, key, err := splitBucketKey(locator)
	if err != nil {
		return nil, err
	}
	client, err := s.init(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object: %w", err)
	}
	defer out.Body.Close()

	// buffered so the body is closed before parsing
	data, err := readAllLimited(out.Body, maxObjectBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3 object: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GCSSource reads gs://bucket/object objects using application default credentials
type GCSSource struct {
	once   sync.Once
	client *storage.Client
	err    error
}

// NewGCSSource creates a Cloud Storage source; the client is built on first use
func NewGCSSource() *GCSSource {
	return &GCSSource{}
}

func (s *GCSSource) init(ctx context.Context) (*storage.Client, error) {
	s.once.Do(func() {
		// the client outlives the first request
		client, err := storage.NewClient(context.WithoutCancel(ctx))
		if err != nil {
			s.err = fmt.Errorf("failed to create storage client: %w", err)
			return
		}
		s.client = client
	})
	return s.client, s.err
}

// Open streams the object
func (s *GCSSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	bucket, object, err := splitBucketKey(locator)
	if err != nil {
		return nil, err
	}
	client, err := s.init(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gcs object: %w", err)
	}
	return r, nil
}

// Close releases the storage client if one was created
func (s *GCSSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
