package namespace_test

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jrsteele09/go-bucket-browser/namespace"
	"github.com/jrsteele09/go-bucket-browser/objectstore/s3store"
	"github.com/stretchr/testify/require"
)

type bucketObject struct {
	size        int64
	contentType string
}

// listingS3 answers ListObjectsV2 the way S3 does, without content types.
type listingS3 struct {
	s3iface.S3API
	objects map[string]bucketObject
	heads   atomic.Int32
}

func (f *listingS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	prefix, delimiter := aws.StringValue(in.Prefix), aws.StringValue(in.Delimiter)
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	seen := map[string]bool{}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if i := strings.Index(rest, delimiter); delimiter != "" && i >= 0 {
			cp := prefix + rest[:i+1]
			if !seen[cp] {
				seen[cp] = true
				out.CommonPrefixes = append(out.CommonPrefixes, &s3.CommonPrefix{Prefix: aws.String(cp)})
			}
			continue
		}
		out.Contents = append(out.Contents, &s3.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(f.objects[k].size),
			LastModified: aws.Time(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		})
	}
	return out, nil
}

func (f *listingS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.heads.Add(1)
	obj, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New("NotFound", "not found", nil)
	}
	out := &s3.HeadObjectOutput{ContentLength: aws.Int64(obj.size)}
	if obj.contentType != "" {
		out.ContentType = aws.String(obj.contentType)
	}
	return out, nil
}

func TestListOnS3ReportsContentTypes(t *testing.T) {
	fake := &listingS3{objects: map[string]bucketObject{
		"docs/":              {},
		"docs/readme.txt":    {size: 10, contentType: "text/plain"},
		"docs/report.pdf":    {size: 20, contentType: "application/pdf"},
		"docs/blob":          {size: 5},
		"docs/img/photo.jpg": {size: 500, contentType: "image/jpeg"},
	}}
	manager := namespace.NewManager(s3store.New(fake, "bucket"), namespace.WithWorkers(2))

	listing, err := manager.List(context.Background(), "docs/")
	require.NoError(t, err)
	require.Equal(t, []string{"img"}, folderNames(listing))
	require.Equal(t, []string{"blob", "readme.txt", "report.pdf"}, fileNames(listing))

	types := map[string]string{}
	for _, f := range listing.Files {
		types[f.Name] = f.ContentType
	}
	require.Equal(t, map[string]string{
		"blob":       "application/octet-stream",
		"readme.txt": "text/plain",
		"report.pdf": "application/pdf",
	}, types)
	require.Equal(t, int32(3), fake.heads.Load())
}
