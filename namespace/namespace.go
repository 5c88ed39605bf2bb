// Package namespace presents a flat object store as a tree of folders and files.
//
// Folders are never stored as independent records. A folder exists when any
// key starts with its path, and a zero-length marker object carrying the
// is-folder metadata is written only so that empty folders can be listed.
package namespace

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
	"golang.org/x/sync/errgroup"
)

// Separator is the hierarchy separator used to simulate folders.
const Separator = "/"

type Folder struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsFolder bool   `json:"isFolder"`
}

type File struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	IsFolder     bool      `json:"isFolder"`
	ContentType  string    `json:"contentType"`
}

// Listing holds the direct children of Prefix. ParentFolder is nil at the root.
type Listing struct {
	Prefix       string   `json:"prefix"`
	Folders      []Folder `json:"folders"`
	Files        []File   `json:"files"`
	ParentFolder *string  `json:"parentFolder"`
}

// BatchObserver is notified of the outcome of every object touched by a
// rename or delete.
type BatchObserver interface {
	ObserveBatchObject(op, outcome string)
}

type Manager struct {
	store        objectstore.Store
	workers      int
	opsPerSecond float64
	nowTime      func() time.Time
	observer     BatchObserver
}

type Option func(*Manager)

// WithWorkers bounds the number of objects processed concurrently by a rename
// or delete, and the content-type lookups made by a listing.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithOpsPerSecond throttles each rename or delete to n objects per second. Zero disables it.
func WithOpsPerSecond(n float64) Option {
	return func(m *Manager) {
		m.opsPerSecond = n
	}
}

// WithNowTime sets the clock used for folder markers (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func WithObserver(o BatchObserver) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

func NewManager(store objectstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		workers: 8,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns the folders and files directly under prefix, in the store's
// listing order. Every page of the underlying listing is consumed.
func (m *Manager) List(ctx context.Context, prefix string) (*Listing, error) {
	prefix = normalize(prefix)
	listing := &Listing{
		Prefix:       prefix,
		Folders:      []Folder{},
		Files:        []File{},
		ParentFolder: parentFolder(prefix),
	}

	in := objectstore.ListInput{Prefix: prefix, Delimiter: Separator}
	for page, err := range objectstore.Pages(ctx, m.store, in) {
		if err != nil {
			return nil, fmt.Errorf("[Manager List] failed to list %q: %w", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			listing.Folders = append(listing.Folders, Folder{
				Name:     strings.TrimSuffix(strings.TrimPrefix(cp, prefix), Separator),
				Path:     cp,
				IsFolder: true,
			})
		}
		for _, obj := range page.Objects {
			// the folder's own marker
			if obj.Key == prefix {
				continue
			}
			listing.Files = append(listing.Files, File{
				Name:         strings.TrimPrefix(obj.Key, prefix),
				Path:         obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				ContentType:  obj.ContentType,
			})
		}
	}

	if err := m.fillContentTypes(ctx, listing.Files); err != nil {
		return nil, fmt.Errorf("[Manager List] failed to read content types under %q: %w", prefix, err)
	}
	return listing, nil
}

// fillContentTypes heads every file the listing returned without a content
// type, at most m.workers at a time. S3 listings never carry one.
func (m *Manager) fillContentTypes(ctx context.Context, files []File) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i := range files {
		if files[i].ContentType != "" {
			continue
		}
		g.Go(func() error {
			info, err := m.store.Head(ctx, files[i].Path)
			if apperrors.Is(err, objectstore.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			files[i].ContentType = info.ContentType
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range files {
		if files[i].ContentType == "" {
			files[i].ContentType = objectstore.DefaultContentType
		}
	}
	return nil
}

// CreateFolder writes the marker object for path and returns the normalized
// folder path. Creating an existing folder rewrites its marker.
func (m *Manager) CreateFolder(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Manager CreateFolder] path is required")
	}
	path = normalize(path)

	err := m.store.Put(ctx, path, nil, objectstore.PutOptions{
		Metadata: map[string]string{
			objectstore.MetaIsFolder:  "true",
			objectstore.MetaCreatedAt: m.nowTime().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("[Manager CreateFolder] failed to write marker %q: %w", path, err)
	}
	return path, nil
}

// RenameFolder moves every object under oldPath to the same relative key under
// newPath. Each object is written to its new key before the original is
// deleted, but the subtree as a whole is not moved atomically: on failure the
// returned report lists what moved and what did not, and re-running the
// rename completes it.
func (m *Manager) RenameFolder(ctx context.Context, oldPath, newPath string) (*Report, error) {
	if oldPath == "" || newPath == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Manager RenameFolder] oldPath and newPath are required")
	}
	oldPath, newPath = normalize(oldPath), normalize(newPath)
	if oldPath == newPath {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Manager RenameFolder] %q is already named %q", oldPath, newPath)
	}
	if strings.HasPrefix(newPath, oldPath) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Manager RenameFolder] cannot move %q inside itself", oldPath)
	}

	return m.runBatch(ctx, opRename, oldPath, func(ctx context.Context, key string) (outcome, error) {
		obj, err := m.store.Get(ctx, key)
		if apperrors.Is(err, objectstore.ErrNotFound) {
			return outcomeSkipped, nil
		}
		if err != nil {
			return outcomeFailed, fmt.Errorf("read: %w", err)
		}

		newKey := newPath + strings.TrimPrefix(key, oldPath)
		err = m.store.Put(ctx, newKey, obj.Body, objectstore.PutOptions{
			ContentType: obj.ContentType,
			Metadata:    obj.Metadata,
		})
		if err != nil {
			return outcomeFailed, fmt.Errorf("write %q: %w", newKey, err)
		}

		if err := m.store.Delete(ctx, key); err != nil {
			return outcomeFailed, fmt.Errorf("delete after copy to %q: %w", newKey, err)
		}
		return outcomeSucceeded, nil
	})
}

// DeleteFolder removes every object under path, including its marker.
func (m *Manager) DeleteFolder(ctx context.Context, path string) (*Report, error) {
	if path == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Manager DeleteFolder] path is required")
	}
	path = normalize(path)

	return m.runBatch(ctx, opDelete, path, func(ctx context.Context, key string) (outcome, error) {
		if err := m.store.Delete(ctx, key); err != nil {
			return outcomeFailed, err
		}
		return outcomeSucceeded, nil
	})
}

func normalize(path string) string {
	if path != "" && !strings.HasSuffix(path, Separator) {
		return path + Separator
	}
	return path
}

// parentFolder returns the path above prefix without its trailing separator,
// "" for top level folders and nil for the root.
func parentFolder(prefix string) *string {
	if prefix == "" || prefix == Separator {
		return nil
	}
	clean := strings.TrimSuffix(prefix, Separator)
	parent := ""
	if i := strings.LastIndex(clean, Separator); i >= 0 {
		parent = clean[:i]
	}
	return &parent
}
