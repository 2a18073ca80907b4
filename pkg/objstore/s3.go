package objstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store reads from an S3-compatible bucket via minio-go.
type S3Store struct {
	client *minio.Client
	bucket string
}

type s3Options struct {
	accessKey string
	secretKey string
	region    string
	secure    bool
}

// S3Option configures a new S3Store.
type S3Option func(*s3Options)

// WithCredentials sets static access credentials. Without it the client
// connects anonymously, which public flat-file distributions allow.
func WithCredentials(accessKey, secretKey string) S3Option {
	return func(o *s3Options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithRegion pins the bucket region.
func WithRegion(region string) S3Option {
	return func(o *s3Options) {
		o.region = region
	}
}

// WithSecure toggles TLS (default on).
func WithSecure(secure bool) S3Option {
	return func(o *s3Options) {
		o.secure = secure
	}
}

// NewS3Store connects to an S3-compatible endpoint.
func NewS3Store(endpoint, bucket string, opts ...S3Option) (*S3Store, error) {
	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("objstore: endpoint and bucket are required")
	}
	o := s3Options{secure: true}
	for _, opt := range opts {
		opt(&o)
	}

	mopts := &minio.Options{Secure: o.secure, Region: o.region}
	if o.accessKey != "" {
		mopts.Creds = credentials.NewStaticV4(o.accessKey, o.secretKey, "")
	}
	client, err := minio.New(endpoint, mopts)
	if err != nil {
		return nil, fmt.Errorf("objstore: connect %s: %w", endpoint, err)
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

// List enumerates all objects under prefix. minio drives the paginated
// ListObjectsV2 protocol underneath and delivers keys in listing order.
func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	ch := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range ch {
		if obj.Err != nil {
			return nil, fmt.Errorf("objstore: list %s/%s: %w", s.bucket, prefix, obj.Err)
		}
		infos = append(infos, ObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return infos, nil
}

// Get opens the object for reading. Stat is forced up front so missing keys
// and access failures surface here instead of on the first Read.
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore: get %s/%s: %w", s.bucket, key, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("objstore: stat %s/%s: %w", s.bucket, key, err)
	}
	return obj, nil
}
