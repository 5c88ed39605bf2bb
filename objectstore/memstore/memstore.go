// Package memstore is an in-memory objectstore.Store with S3 listing semantics:
// lexicographic order, delimiter grouping and paginated results.
package memstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-bucket-browser/objectstore"
)

const defaultPageSize = 1000

var _ objectstore.Store = (*Store)(nil)

type object struct {
	body         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
}

// Store keeps objects in a map guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	objects  map[string]object
	pageSize int
	nowTime  func() time.Time
}

type Option func(*Store)

// WithPageSize caps the number of entries (objects plus common prefixes)
// returned per List call.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithNowTime sets the clock used for LastModified (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		objects:  make(map[string]object),
		pageSize: defaultPageSize,
		nowTime:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Put(_ context.Context, key string, body []byte, opts objectstore.PutOptions) error {
	if key == "" {
		return fmt.Errorf("[memstore Put] key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = object{
		body:         append([]byte(nil), body...),
		contentType:  opts.ContentType,
		metadata:     maps.Clone(opts.Metadata),
		lastModified: s.nowTime(),
	}
	return nil
}

func (s *Store) Head(_ context.Context, key string) (*objectstore.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	info := obj.info(key)
	return &info, nil
}

func (s *Store) Get(_ context.Context, key string) (*objectstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return &objectstore.Object{
		ObjectInfo: obj.info(key),
		Body:       append([]byte(nil), obj.body...),
	}, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

func (s *Store) List(_ context.Context, in objectstore.ListInput) (*objectstore.ListPage, error) {
	maxKeys := s.pageSize
	if in.MaxKeys > 0 && in.MaxKeys < maxKeys {
		maxKeys = in.MaxKeys
	}

	after, afterIsPrefix, err := decodeToken(in.ContinuationToken)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(s.objects))
	page := &objectstore.ListPage{}
	count := 0
	lastPrefix := ""
	lastToken := ""

	for i := sort.SearchStrings(keys, in.Prefix); i < len(keys); i++ {
		key := keys[i]
		if !strings.HasPrefix(key, in.Prefix) {
			break
		}
		if after != "" && (key <= after || (afterIsPrefix && strings.HasPrefix(key, after))) {
			continue
		}

		rest := key[len(in.Prefix):]
		if in.Delimiter != "" {
			if j := strings.Index(rest, in.Delimiter); j >= 0 {
				commonPrefix := in.Prefix + rest[:j+len(in.Delimiter)]
				if commonPrefix == lastPrefix {
					continue
				}
				if count == maxKeys {
					page.Truncated = true
					break
				}
				page.CommonPrefixes = append(page.CommonPrefixes, commonPrefix)
				lastPrefix = commonPrefix
				lastToken = encodeToken(commonPrefix, true)
				count++
				continue
			}
		}

		if count == maxKeys {
			page.Truncated = true
			break
		}
		page.Objects = append(page.Objects, s.objects[key].info(key))
		lastToken = encodeToken(key, false)
		count++
	}

	if page.Truncated {
		page.NextContinuationToken = lastToken
	}
	return page, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (o object) info(key string) objectstore.ObjectInfo {
	return objectstore.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.body)),
		LastModified: o.lastModified,
		ContentType:  o.contentType,
		Metadata:     maps.Clone(o.metadata),
	}
}

// Tokens record the last entry returned and whether it was a common prefix,
// in which case every key under that prefix has already been accounted for.
func encodeToken(value string, isPrefix bool) string {
	kind := "k:"
	if isPrefix {
		kind = "p:"
	}
	return base64.RawURLEncoding.EncodeToString([]byte(kind + value))
}

func decodeToken(token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < 2 {
		return "", false, fmt.Errorf("[memstore List] invalid continuation token")
	}
	switch string(raw[:2]) {
	case "k:":
		return string(raw[2:]), false, nil
	case "p:":
		return string(raw[2:]), true, nil
	default:
		return "", false, fmt.Errorf("[memstore List] invalid continuation token")
	}
}
