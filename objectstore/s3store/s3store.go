// Package s3store implements objectstore.Store on an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO) using the v1 AWS SDK.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
)

var _ objectstore.Store = (*Store)(nil)

type Store struct {
	client s3iface.S3API
	bucket string
}

func New(client s3iface.S3API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// NewFromSettings builds an S3 client for the configured bucket. Static
// credentials are used when given, otherwise the SDK's default chain applies.
func NewFromSettings(settings config.S3Settings) (*Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("[s3store NewFromSettings] bucket is required")
	}

	awsConfig := &aws.Config{
		Region:           aws.String(settings.Region),
		S3ForcePathStyle: aws.Bool(settings.ForcePathStyle),
	}
	if settings.Endpoint != "" {
		awsConfig.Endpoint = aws.String(settings.Endpoint)
	}
	if settings.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(settings.AccessKeyID, settings.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("[s3store NewFromSettings] failed to create session: %w", err)
	}
	return New(s3.New(sess), settings.Bucket), nil
}

func (s *Store) List(ctx context.Context, in objectstore.ListInput) (*objectstore.ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(in.Prefix),
	}
	if in.Delimiter != "" {
		input.Delimiter = aws.String(in.Delimiter)
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}
	if in.MaxKeys > 0 {
		input.MaxKeys = aws.Int64(int64(in.MaxKeys))
	}

	out, err := s.client.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("[s3store List] prefix %q: %w", in.Prefix, err)
	}

	page := &objectstore.ListPage{
		Truncated:             aws.BoolValue(out.IsTruncated),
		NextContinuationToken: aws.StringValue(out.NextContinuationToken),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, objectstore.ObjectInfo{
			Key:          aws.StringValue(obj.Key),
			Size:         aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
		})
	}
	for _, cp := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.StringValue(cp.Prefix))
	}
	return page, nil
}

func (s *Store) Head(ctx context.Context, key string) (*objectstore.ObjectInfo, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("Head", key, err)
	}
	return &objectstore.ObjectInfo{
		Key:          key,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		ContentType:  aws.StringValue(out.ContentType),
		Metadata:     fromAWSMetadata(out.Metadata),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (*objectstore.Object, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("Get", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("[s3store Get] failed to read %q: %w", key, err)
	}
	return &objectstore.Object{
		ObjectInfo: objectstore.ObjectInfo{
			Key:          key,
			Size:         int64(len(body)),
			LastModified: aws.TimeValue(out.LastModified),
			ContentType:  aws.StringValue(out.ContentType),
			Metadata:     fromAWSMetadata(out.Metadata),
		},
		Body: body,
	}, nil
}

func (s *Store) Put(ctx context.Context, key string, body []byte, opts objectstore.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = aws.StringMap(opts.Metadata)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("[s3store Put] %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("[s3store Delete] %q: %w", key, err)
	}
	return nil
}

// S3 returns user metadata with canonicalised header casing.
func fromAWSMetadata(in map[string]*string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = aws.StringValue(v)
	}
	return out
}

func mapError(op, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("[s3store %s] %q: %w", op, key, objectstore.ErrNotFound)
	}
	return fmt.Errorf("[s3store %s] %q: %w", op, key, err)
}

func isNotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
