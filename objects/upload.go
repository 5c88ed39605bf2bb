package objects

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
)

var allowedContentTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml", "image/bmp",
	"application/pdf", "text/plain", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/zip", "application/x-rar-compressed",
	"video/mp4", "audio/mpeg",
}

var (
	whitespace      = regexp.MustCompile(`\s+`)
	unsafeFileChars = regexp.MustCompile(`[^\w\-.]`)
)

type Upload struct {
	Filename    string
	ContentType string
	Path        string
	Description string
	Tags        string
	UploadedBy  string
	Body        []byte
}

type UploadResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	URL     string `json:"url"`
}

// AllowedContentType reports whether uploads of contentType are accepted.
func AllowedContentType(contentType string) bool {
	return slices.Contains(allowedContentTypes, contentType)
}

// SanitizeFilename replaces whitespace with underscores, drops anything other
// than word characters, hyphens and dots, and prefixes hidden names with "file_".
func SanitizeFilename(name string) string {
	name = whitespace.ReplaceAllString(name, "_")
	name = unsafeFileChars.ReplaceAllString(name, "")
	if strings.HasPrefix(name, ".") {
		name = "file_" + name
	}
	return name
}

// Upload stores a new object under u.Path with the uploader metadata.
func (s *Service) Upload(ctx context.Context, u Upload) (*UploadResult, error) {
	size := int64(len(u.Body))
	if size > s.maxUploadBytes {
		return nil, apperrors.Wrapf(apperrors.ErrPayloadTooLarge, "[Service Upload] file size exceeds the limit of %d bytes", s.maxUploadBytes)
	}
	if !AllowedContentType(u.ContentType) {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedMediaType, "[Service Upload] file type %q not allowed", u.ContentType)
	}

	filename := SanitizeFilename(u.Filename)
	if filename == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Service Upload] no usable file name in %q", u.Filename)
	}

	dest := u.Path
	if dest != "" && !strings.HasSuffix(dest, "/") {
		dest += "/"
	}
	key := dest + filename

	metadata := map[string]string{
		objectstore.MetaOriginalFilename: u.Filename,
		objectstore.MetaUploadedAt:       s.nowTime().UTC().Format(time.RFC3339),
	}
	if u.UploadedBy != "" {
		metadata[objectstore.MetaUploadedBy] = u.UploadedBy
	}
	if u.Description != "" {
		metadata[objectstore.MetaDescription] = u.Description
	}
	if u.Tags != "" {
		metadata[objectstore.MetaTags] = u.Tags
	}

	err := s.store.Put(ctx, key, u.Body, objectstore.PutOptions{ContentType: u.ContentType, Metadata: metadata})
	if err != nil {
		return nil, fmt.Errorf("[Service Upload] failed to store %q: %w", key, err)
	}

	result := &UploadResult{
		Success: true,
		Path:    key,
		Size:    size,
		Type:    u.ContentType,
	}
	if s.publicDomain != "" {
		result.URL = "https://" + s.publicDomain + "/" + key
	}
	return result, nil
}
