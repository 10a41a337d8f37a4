// Package s3 stores the roster snapshot as a single JSON object in an
// S3-compatible bucket (AWS S3 or MinIO). The object body is the same
// document the jsonfile backend writes.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/mesh-intelligence/roster/internal/jsonfile"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// Store is a types.Storage holding the snapshot in one object.
type Store struct {
	client *s3.Client
	bucket string
	key    string
}

var _ types.Storage = (*Store)(nil)

// New creates an S3 store from cfg. Credentials come from the default AWS
// chain.
func New(ctx context.Context, cfg types.S3Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, types.ErrBucketMissing
	}
	region := cfg.Region
	if region == "" {
		region = types.DefaultS3Region
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewWithClient wraps an existing client. An empty key selects
// types.DefaultS3Key.
func NewWithClient(client *s3.Client, bucket, key string) *Store {
	if key == "" {
		key = types.DefaultS3Key
	}
	return &Store{client: client, bucket: bucket, key: key}
}

// Location implements types.Storage.
func (s *Store) Location() string { return "s3://" + s.bucket + "/" + s.key }

// Load fetches and decodes the object. A missing object wraps
// types.ErrStorageAbsent.
func (s *Store) Load(ctx context.Context) (types.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if isNotFound(err) {
		return nil, fmt.Errorf("%s: %w", s.Location(), types.ErrStorageAbsent)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Location(), err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Location(), err)
	}
	return jsonfile.Decode(data)
}

// Save encodes snap and overwrites the object.
func (s *Store) Save(ctx context.Context, snap types.Snapshot) error {
	data, err := jsonfile.Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.Location(), err)
	}
	return nil
}

// Purge deletes the object. It reports false if the object did not exist.
func (s *Store) Purge(ctx context.Context) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &s.key})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("head %s: %w", s.Location(), err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &s.key}); err != nil {
		return false, fmt.Errorf("delete %s: %w", s.Location(), err)
	}
	return true, nil
}

// Close implements types.Storage; the client holds no resources to release.
func (s *Store) Close() error { return nil }

// isNotFound reports a missing object: a 404 response, or the NoSuchKey and
// NotFound error codes S3-compatible servers use.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
