package objects

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
)

// SearchQuery filters objects under Prefix. Empty fields match everything.
type SearchQuery struct {
	Prefix      string
	Tags        string
	Description string
	Type        string
	From        time.Time
	To          time.Time
}

type SearchResult struct {
	Key         string            `json:"key"`
	Size        int64             `json:"size"`
	Uploaded    time.Time         `json:"uploaded"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

// Search walks every object under the prefix and keeps those matching q.
// It is a linear scan with one Head per object.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	results := []SearchResult{}
	searchTags := splitTags(q.Tags)

	for obj, err := range objectstore.Walk(ctx, s.store, objectstore.ListInput{Prefix: q.Prefix}) {
		if err != nil {
			return nil, fmt.Errorf("[Service Search] %w", err)
		}
		// folder markers
		if strings.HasSuffix(obj.Key, "/") && obj.Size == 0 {
			continue
		}

		info, err := s.store.Head(ctx, obj.Key)
		if err != nil {
			if apperrors.Is(err, objectstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("[Service Search] %w", err)
		}
		if !q.matches(info, searchTags) {
			continue
		}

		metadata := info.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		results = append(results, SearchResult{
			Key:         info.Key,
			Size:        info.Size,
			Uploaded:    info.LastModified,
			ContentType: info.ContentType,
			Metadata:    metadata,
		})
	}
	return results, nil
}

func (q SearchQuery) matches(info *objectstore.ObjectInfo, searchTags []string) bool {
	if len(searchTags) > 0 {
		objectTags := splitTags(info.Metadata[objectstore.MetaTags])
		if !slices.ContainsFunc(searchTags, func(tag string) bool { return slices.Contains(objectTags, tag) }) {
			return false
		}
	}
	if q.Description != "" && !containsFold(info.Metadata[objectstore.MetaDescription], q.Description) {
		return false
	}
	if q.Type != "" && !containsFold(info.ContentType, q.Type) {
		return false
	}
	if !q.From.IsZero() && info.LastModified.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && info.LastModified.After(q.To) {
		return false
	}
	return true
}

// ParseDate accepts RFC 3339 timestamps and plain dates.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
