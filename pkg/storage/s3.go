package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// S3API is the subset of the S3 client this package calls.
// The [s3.Client] type satisfies it.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// presignAPI is satisfied by [s3.PresignClient].
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Sink writes one artifact to an object in an S3-compatible bucket.
// PutObject either creates the complete object or changes nothing, so
// the store provides the atomic contract itself.
type S3Sink struct {
	client      S3API
	bucket      string
	key         string
	contentType string
}

// S3SinkOption configures an S3Sink.
type S3SinkOption func(*S3Sink)

// WithContentType overrides the content type recorded on the object.
// The default is derived from the key's extension.
func WithContentType(ct string) S3SinkOption {
	return func(s *S3Sink) { s.contentType = ct }
}

// NewS3Sink returns a sink that writes to key in bucket. The client
// must be pre-configured; any type satisfying [S3API] is accepted.
func NewS3Sink(client S3API, bucket, key string, opts ...S3SinkOption) *S3Sink {
	s := &S3Sink{client: client, bucket: bucket, key: key}
	for _, opt := range opts {
		opt(s)
	}
	if s.contentType == "" {
		s.contentType = contentTypeByExt(key)
	}
	return s
}

// Put uploads r as the object's content.
func (s *S3Sink) Put(ctx context.Context, r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        cr,
		ContentType: aws.String(s.contentType),
	})
	if err != nil {
		return 0, putError(s.bucket, s.key, err)
	}
	return cr.n, nil
}

// countingReader tracks how many bytes PutObject consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// putError trims the SDK's deeply wrapped operation errors down to
// the API error code when one is present.
func putError(bucket, key string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("storage: put s3://%s/%s: %s: %s", bucket, key, ae.ErrorCode(), ae.ErrorMessage())
	}
	return fmt.Errorf("storage: put s3://%s/%s: %w", bucket, key, err)
}

// BucketConfig configures access to an S3-compatible bucket.
type BucketConfig struct {
	// Name is the bucket name. Required.
	Name string

	// Endpoint overrides the S3 endpoint, for R2 or MinIO style
	// stores. Leave empty for AWS S3.
	Endpoint string

	// Region defaults to "auto", which R2 expects.
	Region string

	// Static credentials. When empty the SDK's default chain applies.
	AccessKeyID     string
	SecretAccessKey string

	// PublicURL, when set, is the CDN base public objects are served
	// from. Staged uploads then return public URLs instead of
	// presigned ones.
	PublicURL string

	// Prefix is prepended to generated staging keys.
	Prefix string
}

// Bucket wraps an S3-compatible bucket with sink creation, staging
// uploads for providers that only accept remote media, and presigned
// URLs.
type Bucket struct {
	client    S3API
	presigner presignAPI
	name      string
	endpoint  string
	publicURL string
	prefix    string
}

// NewBucket connects to the configured bucket.
func NewBucket(ctx context.Context, cfg BucketConfig) (*Bucket, error) {
	if cfg.Name == "" {
		return nil, errors.New("storage: bucket name required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Bucket{
		client:    client,
		presigner: s3.NewPresignClient(client),
		name:      cfg.Name,
		endpoint:  endpoint,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Sink returns a sink writing to key in this bucket.
func (b *Bucket) Sink(key string, opts ...S3SinkOption) *S3Sink {
	return NewS3Sink(b.client, b.name, key, opts...)
}

// defaultStageExpiry bounds how long providers can fetch staged input.
const defaultStageExpiry = time.Hour

// Stage uploads a local file under a fresh staging key and returns a
// URL a provider can fetch it from. Buckets with a public CDN return
// the public URL; private buckets get a presigned GET valid for one
// hour.
func (b *Bucket) Stage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := uuid.NewString() + strings.ToLower(filepath.Ext(path))
	if b.prefix != "" {
		key = b.prefix + "/" + key
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeByExt(path)),
	})
	if err != nil {
		return "", putError(b.name, key, err)
	}
	if b.publicURL != "" {
		return b.PublicURL(key), nil
	}
	return b.Presign(ctx, key, defaultStageExpiry)
}

// Presign returns a presigned GET URL for key.
func (b *Bucket) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL returns the URL key is served from without signing.
func (b *Bucket) PublicURL(key string) string {
	if b.publicURL != "" {
		return b.publicURL + "/" + key
	}
	if b.endpoint != "" {
		return b.endpoint + "/" + b.name + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.name, key)
}

var _ remotejob.Sink = (*S3Sink)(nil)
