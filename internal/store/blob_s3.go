package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
)

// s3API is the subset of *s3.Client used by the blob store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3BlobStore stores blobs as objects of one bucket keyed by content hash.
type s3BlobStore struct {
	client s3API
	bucket string
	logger *logger.Logger
}

// NewS3BlobStore builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain
// applies. Endpoint targets S3-compatible stores such as MinIO.
func NewS3BlobStore(ctx context.Context, cfg config.S3, log *logger.Logger) (BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Err(err).Str("func", "NewS3BlobStore").Msg("error loading aws config")
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	log.Info().Str("func", "NewS3BlobStore").Str("bucket", cfg.Bucket).Msg("s3 blob store is ready")

	return &s3BlobStore{client: client, bucket: cfg.Bucket, logger: log}, nil
}

// Put uploads r under key. Non-seekable readers are buffered because the
// request signature needs the payload hash.
func (s *s3BlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	log := logger.FromContext(ctx)

	body, ok := r.(io.ReadSeeker)
	if !ok {
		payload, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("error reading blob payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		log.Err(err).Str("func", "s3BlobStore.Put").Str("key", key).Msg("failed to put object")
		return fmt.Errorf("error putting object %s: %w", key, err)
	}

	return nil
}

func (s *s3BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isS3NotFound(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "s3BlobStore.Get").Str("key", key).Msg("failed to get object")
		return nil, fmt.Errorf("error getting object %s: %w", key, err)
	}

	return out.Body, nil
}

func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
