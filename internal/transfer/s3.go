package transfer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Options configure the object-storage uploader.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
	Secure    bool
}

// S3 pushes archived log files to S3-compatible object storage.
type S3 struct {
	client       *minio.Client
	opts         S3Options
	logger       *zap.Logger
	bucketReady  bool
	retryBackoff []time.Duration
}

// NewS3 builds the uploader. The bucket is ensured lazily on first
// upload so construction never blocks on the network.
func NewS3(opts S3Options, logger *zap.Logger) (*S3, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("build s3 client for %q: %w", opts.Endpoint, err)
	}
	return &S3{
		client:       client,
		opts:         opts,
		logger:       logger.Named("transfer"),
		retryBackoff: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
	}, nil
}

// Upload stores the file under prefix/<file name>. Returns the object
// URI and its SHA-256 checksum.
func (s *S3) Upload(ctx context.Context, localPath string) (string, string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", "", fmt.Errorf("read %q: %w", localPath, err)
	}

	if !s.bucketReady {
		if err := s.ensureBucket(ctx); err != nil {
			return "", "", err
		}
		s.bucketReady = true
	}

	object := path.Join(s.opts.Prefix, filepath.Base(localPath))

	var lastErr error
	for attempt, wait := range s.retryBackoff {
		_, lastErr = s.client.PutObject(ctx, s.opts.Bucket, object,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
		if lastErr == nil {
			break
		}
		if attempt == len(s.retryBackoff)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(wait):
		}
	}
	if lastErr != nil {
		return "", "", fmt.Errorf("put object %q after retries: %w", object, lastErr)
	}

	sum := sha256.Sum256(data)
	checksum := "sha256:" + hex.EncodeToString(sum[:])
	uri := "s3://" + path.Join(s.opts.Bucket, object)

	s.logger.Info("object stored",
		zap.String("uri", uri),
		zap.String("checksum", checksum),
		zap.Int("bytes", len(data)))
	return uri, checksum, nil
}

func (s *S3) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.opts.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.opts.Bucket, err)
	}
	return nil
}
