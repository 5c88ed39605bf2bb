package s3store_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
	"github.com/jrsteele09/go-bucket-browser/objectstore/s3store"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API

	listInput *s3.ListObjectsV2Input
	listOut   *s3.ListObjectsV2Output
	putInput  *s3.PutObjectInput
	headOut   *s3.HeadObjectOutput
	getOut    *s3.GetObjectOutput
	err       error
	deleted   []string
}

func (f *fakeS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.listInput = in
	return f.listOut, f.err
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, _ *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	return f.headOut, f.err
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, _ *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	return f.getOut, f.err
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.putInput = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func TestList(t *testing.T) {
	modified := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeS3{listOut: &s3.ListObjectsV2Output{
		Contents: []*s3.Object{
			{Key: aws.String("docs/"), Size: aws.Int64(0), LastModified: aws.Time(modified)},
			{Key: aws.String("docs/a.txt"), Size: aws.Int64(42), LastModified: aws.Time(modified)},
		},
		CommonPrefixes:        []*s3.CommonPrefix{{Prefix: aws.String("docs/img/")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}}
	store := s3store.New(fake, "bucket")

	page, err := store.List(context.Background(), objectstore.ListInput{Prefix: "docs/", Delimiter: "/", ContinuationToken: "tok"})
	require.NoError(t, err)

	require.Equal(t, "bucket", aws.StringValue(fake.listInput.Bucket))
	require.Equal(t, "docs/", aws.StringValue(fake.listInput.Prefix))
	require.Equal(t, "/", aws.StringValue(fake.listInput.Delimiter))
	require.Equal(t, "tok", aws.StringValue(fake.listInput.ContinuationToken))
	require.Nil(t, fake.listInput.MaxKeys)

	require.True(t, page.Truncated)
	require.Equal(t, "next", page.NextContinuationToken)
	require.Equal(t, []string{"docs/img/"}, page.CommonPrefixes)
	require.Len(t, page.Objects, 2)
	require.Equal(t, int64(42), page.Objects[1].Size)
	require.Equal(t, modified, page.Objects[1].LastModified)
}

func TestHeadLowercasesMetadata(t *testing.T) {
	fake := &fakeS3{headOut: &s3.HeadObjectOutput{
		ContentLength: aws.Int64(7),
		ContentType:   aws.String("text/plain"),
		Metadata:      map[string]*string{"Is-Folder": aws.String("true"), "Created-At": aws.String("2026-01-01T00:00:00Z")},
	}}
	store := s3store.New(fake, "bucket")

	info, err := store.Head(context.Background(), "docs/")
	require.NoError(t, err)
	require.Equal(t, "true", info.Metadata[objectstore.MetaIsFolder])
	require.Equal(t, "2026-01-01T00:00:00Z", info.Metadata[objectstore.MetaCreatedAt])
	require.Equal(t, int64(7), info.Size)
}

func TestNotFoundMapping(t *testing.T) {
	notFound := awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req")
	store := s3store.New(&fakeS3{err: notFound}, "bucket")

	_, err := store.Head(context.Background(), "missing")
	require.ErrorIs(t, err, objectstore.ErrNotFound)

	store = s3store.New(&fakeS3{err: awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)}, "bucket")
	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, objectstore.ErrNotFound)

	require.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestGetReadsBody(t *testing.T) {
	fake := &fakeS3{getOut: &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader([]byte("payload"))),
		ContentType: aws.String("application/json"),
	}}
	store := s3store.New(fake, "bucket")

	obj, err := store.Get(context.Background(), "a.json")
	require.NoError(t, err)
	require.Equal(t, "payload", string(obj.Body))
	require.Equal(t, int64(7), obj.Size)
	require.Equal(t, "application/json", obj.ContentType)
}

func TestPutPassesMetadata(t *testing.T) {
	fake := &fakeS3{}
	store := s3store.New(fake, "bucket")

	err := store.Put(context.Background(), "docs/", nil, objectstore.PutOptions{
		ContentType: "application/x-directory",
		Metadata:    map[string]string{objectstore.MetaIsFolder: "true"},
	})
	require.NoError(t, err)
	require.Equal(t, "docs/", aws.StringValue(fake.putInput.Key))
	require.Equal(t, "application/x-directory", aws.StringValue(fake.putInput.ContentType))
	require.Equal(t, "true", aws.StringValue(fake.putInput.Metadata[objectstore.MetaIsFolder]))
}

func TestDeletePropagatesErrors(t *testing.T) {
	fake := &fakeS3{err: awserr.New("AccessDenied", "denied", nil)}
	store := s3store.New(fake, "bucket")

	require.Error(t, store.Delete(context.Background(), "k"))
	require.Equal(t, []string{"k"}, fake.deleted)
}

func TestNewFromSettingsRequiresBucket(t *testing.T) {
	_, err := s3store.NewFromSettings(config.S3Settings{})
	require.Error(t, err)

	store, err := s3store.NewFromSettings(config.S3Settings{
		Bucket:          "bucket",
		Endpoint:        "http://localhost:9000",
		Region:          "auto",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		ForcePathStyle:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, store)
}
