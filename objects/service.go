// Package objects reads and edits individual objects: metadata, metadata
// search and validated uploads.
package objects

import (
	"context"
	"fmt"
	"maps"
	"time"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
)

const defaultMaxUploadBytes = 10 * 1024 * 1024

type HTTPMetadata struct {
	ContentType string `json:"contentType,omitempty"`
}

type ObjectMetadata struct {
	Key            string            `json:"key"`
	Size           int64             `json:"size"`
	Uploaded       time.Time         `json:"uploaded"`
	HTTPMetadata   HTTPMetadata      `json:"httpMetadata"`
	CustomMetadata map[string]string `json:"customMetadata"`
}

// MetadataUpdate is merged onto an object's existing metadata. Nil parts are left alone.
type MetadataUpdate struct {
	HTTPMetadata   *HTTPMetadata     `json:"httpMetadata"`
	CustomMetadata map[string]string `json:"customMetadata"`
}

type Service struct {
	store          objectstore.Store
	maxUploadBytes int64
	publicDomain   string
	nowTime        func() time.Time
}

type Option func(*Service)

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithPublicDomain sets the host that serves the bucket publicly; uploads
// report their URL under it.
func WithPublicDomain(domain string) Option {
	return func(s *Service) {
		s.publicDomain = domain
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(store objectstore.Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		maxUploadBytes: defaultMaxUploadBytes,
		nowTime:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

func (s *Service) Metadata(ctx context.Context, key string) (*ObjectMetadata, error) {
	if key == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Service Metadata] object key is required")
	}
	info, err := s.store.Head(ctx, key)
	if err != nil {
		return nil, notFound("Metadata", key, err)
	}
	return toMetadata(info), nil
}

// UpdateMetadata rewrites the object with its existing body and the merged metadata.
func (s *Service) UpdateMetadata(ctx context.Context, key string, update MetadataUpdate) (*ObjectMetadata, error) {
	if key == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Service UpdateMetadata] object key is required")
	}
	if update.HTTPMetadata == nil && update.CustomMetadata == nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Service UpdateMetadata] metadata is required")
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, notFound("UpdateMetadata", key, err)
	}

	contentType := obj.ContentType
	if update.HTTPMetadata != nil && update.HTTPMetadata.ContentType != "" {
		contentType = update.HTTPMetadata.ContentType
	}
	custom := maps.Clone(obj.Metadata)
	if custom == nil {
		custom = map[string]string{}
	}
	maps.Copy(custom, update.CustomMetadata)

	if err := s.store.Put(ctx, key, obj.Body, objectstore.PutOptions{ContentType: contentType, Metadata: custom}); err != nil {
		return nil, fmt.Errorf("[Service UpdateMetadata] failed to rewrite %q: %w", key, err)
	}

	info, err := s.store.Head(ctx, key)
	if err != nil {
		return nil, notFound("UpdateMetadata", key, err)
	}
	return toMetadata(info), nil
}

func toMetadata(info *objectstore.ObjectInfo) *ObjectMetadata {
	custom := info.Metadata
	if custom == nil {
		custom = map[string]string{}
	}
	return &ObjectMetadata{
		Key:            info.Key,
		Size:           info.Size,
		Uploaded:       info.LastModified,
		HTTPMetadata:   HTTPMetadata{ContentType: info.ContentType},
		CustomMetadata: custom,
	}
}

func notFound(op, key string, err error) error {
	if apperrors.Is(err, objectstore.ErrNotFound) {
		return fmt.Errorf("[Service %s] %q: %w", op, key, apperrors.ErrObjectNotFound)
	}
	return fmt.Errorf("[Service %s] %q: %w", op, key, err)
}
