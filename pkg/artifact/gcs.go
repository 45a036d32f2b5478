package artifact

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// GCSStore reads artifacts from gs://bucket/prefix
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// NewGCSStore creates a client with application default credentials, or
// credentialsFile when set
func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "gs artifact path needs a bucket")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		prefix: prefix,
	}, nil
}

// Open opens an object reader
func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(objectKey(s.prefix, name)).NewReader(ctx)
	if err != nil {
		if stderrors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// Location returns the gs URL
func (s *GCSStore) Location() string {
	return fmt.Sprintf("gs://%s/%s", s.name, s.prefix)
}

// Close releases the client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
