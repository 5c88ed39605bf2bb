// Package objectstore describes a flat key to blob store with prefix and
// delimiter listing, the only primitive the namespace manager builds on.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Head and Get for keys that do not exist.
var ErrNotFound = errors.New("object not found")

// Custom metadata keys. They are lower-case kebab so they survive the header
// canonicalisation S3-compatible stores apply to user metadata.
const (
	MetaIsFolder         = "is-folder"
	MetaCreatedAt        = "created-at"
	MetaOriginalFilename = "original-filename"
	MetaUploadedAt       = "uploaded-at"
	MetaUploadedBy       = "uploaded-by"
	MetaDescription      = "description"
	MetaTags             = "tags"
)

// DefaultContentType is reported for objects stored without a content type.
const DefaultContentType = "application/octet-stream"

// ObjectInfo describes a stored object without its body. Listings may leave
// ContentType and Metadata empty; Head always fills what the store knows.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	Metadata     map[string]string
}

// Object is an object together with its body. Bodies are bounded by the
// upload ceiling, so they are held in memory.
type Object struct {
	ObjectInfo
	Body []byte
}

type ListInput struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int
}

// ListPage is one page of a listing. When Truncated is set, the next page is
// fetched by passing NextContinuationToken back in ListInput.
type ListPage struct {
	Objects               []ObjectInfo
	CommonPrefixes        []string
	Truncated             bool
	NextContinuationToken string
}

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Store is the object store contract. Point operations are strongly
// consistent; listings may lag behind recent writes.
type Store interface {
	List(ctx context.Context, in ListInput) (*ListPage, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body []byte, opts PutOptions) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
