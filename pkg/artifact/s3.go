package artifact

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// S3API is the part of the S3 client the store uses
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads artifacts from s3://bucket/prefix
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store builds a client from the default AWS credential chain
func NewS3Store(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "s3 artifact path needs a bucket")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Open fetches an object body
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Location returns the s3 URL
func (s *S3Store) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *S3Store) Close() error { return nil }
