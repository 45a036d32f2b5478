package artifact

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// ErrNotFound is returned by a Store when an object does not exist
var ErrNotFound = stderrors.New("artifact not found")

// Store reads named artifact objects from a directory-like location
type Store interface {
	// Open returns the object's contents. Absent objects return an error
	// wrapping ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Location describes the store for logs
	Location() string
	Close() error
}

// StoreConfig selects and configures a store
type StoreConfig struct {
	// Path is a local directory, s3://bucket/prefix or gs://bucket/prefix
	Path            string
	Region          string
	CredentialsFile string
}

// OpenStore returns the store Path points at
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	scheme, bucket, prefix := splitURL(cfg.Path)
	switch scheme {
	case "s3":
		return NewS3Store(ctx, bucket, prefix, cfg.Region)
	case "gs":
		return NewGCSStore(ctx, bucket, prefix, cfg.CredentialsFile)
	case "":
		return NewLocalStore(cfg.Path)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported artifact store scheme %q", scheme)
	}
}

// splitURL splits scheme://bucket/prefix. Plain paths return an empty scheme.
func splitURL(path string) (scheme, bucket, prefix string) {
	i := strings.Index(path, "://")
	if i < 0 {
		return "", "", path
	}
	scheme = strings.ToLower(path[:i])
	rest := path[i+3:]
	if j := strings.Index(rest, "/"); j >= 0 {
		return scheme, rest[:j], strings.Trim(rest[j+1:], "/")
	}
	return scheme, rest, ""
}

// objectKey joins an object prefix and name with "/"
func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// LocalStore reads artifacts from a directory
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir. The directory must exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, errors.ErrorTypeArtifact, "artifact directory "+dir+" does not exist")
		}
		return nil, errors.Wrap(err, errors.ErrorTypeArtifact, "failed to stat artifact directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrorTypeArtifact, "artifact path %s is not a directory", dir)
	}
	return &LocalStore{dir: dir}, nil
}

// Open opens a file in the directory
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Clean("/"+name))) //nolint:gosec // names come from the manifest, not requests
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Location returns the directory
func (s *LocalStore) Location() string { return s.dir }

// Close is a no-op
func (s *LocalStore) Close() error { return nil }
