package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jrsteele09/go-bucket-browser/auth"
	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/namespace"
	"github.com/jrsteele09/go-bucket-browser/objects"
)

// multipart overhead allowed on top of the file size limit
const uploadFormOverhead = 1 << 20

func (s *Server) ListFoldersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := s.namespace.List(r.Context(), r.URL.Query().Get("prefix"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listing)
	}
}

type folderRequest struct {
	Path string `json:"path"`
}

func (s *Server) CreateFolderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if err := decodeJSON(r, w, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Path == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Path is required"})
			return
		}

		path, err := s.namespace.CreateFolder(r.Context(), req.Path)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, folderRequest{Path: path})
	}
}

type renameRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type renameResponse struct {
	OldPath string            `json:"oldPath"`
	NewPath string            `json:"newPath"`
	Report  *namespace.Report `json:"report"`
}

func (s *Server) RenameFolderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decodeJSON(r, w, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.OldPath == "" || req.NewPath == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Both oldPath and newPath are required"})
			return
		}

		report, err := s.namespace.RenameFolder(r.Context(), req.OldPath, req.NewPath)
		if err != nil {
			writeBatchError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, renameResponse{
			OldPath: req.OldPath,
			NewPath: req.NewPath,
			Report:  report,
		})
	}
}

type deleteResponse struct {
	Deleted bool              `json:"deleted"`
	Path    string            `json:"path"`
	Report  *namespace.Report `json:"report"`
}

func (s *Server) DeleteFolderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.PathValue("path")
		if path == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Path is required"})
			return
		}

		report, err := s.namespace.DeleteFolder(r.Context(), path)
		if err != nil {
			writeBatchError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: true, Path: path, Report: report})
	}
}

func (s *Server) GetMetadataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		if key == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Object key is required"})
			return
		}

		metadata, err := s.objects.Metadata(r.Context(), key)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, metadata)
	}
}

func (s *Server) UpdateMetadataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		if key == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Object key is required"})
			return
		}

		var update objects.MetadataUpdate
		if err := decodeJSON(r, w, &update); err != nil {
			writeError(w, err)
			return
		}
		if update.HTTPMetadata == nil && update.CustomMetadata == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Metadata is required"})
			return
		}

		metadata, err := s.objects.UpdateMetadata(r.Context(), key, update)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, metadata)
	}
}

type searchResponse struct {
	Count   int                    `json:"count"`
	Results []objects.SearchResult `json:"results"`
}

func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		q := objects.SearchQuery{
			Prefix:      query.Get("prefix"),
			Tags:        query.Get("tags"),
			Description: query.Get("description"),
			Type:        query.Get("type"),
		}

		var err error
		if v := query.Get("dateFrom"); v != "" {
			if q.From, err = objects.ParseDate(v); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid dateFrom"})
				return
			}
		}
		if v := query.Get("dateTo"); v != "" {
			if q.To, err = objects.ParseDate(v); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid dateTo"})
				return
			}
		}

		results, err := s.objects.Search(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Count: len(results), Results: results})
	}
}

func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Content-Type must be multipart/form-data"})
			return
		}

		maxBytes := s.objects.MaxUploadBytes()
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+uploadFormOverhead)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, fmt.Errorf("unreadable form: %w: %w", apperrors.ErrInvalidRequest, err))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file provided"})
			return
		}
		defer file.Close()

		if header.Size > maxBytes {
			writeError(w, apperrors.Wrapf(apperrors.ErrPayloadTooLarge, "file size exceeds the limit of %d bytes", maxBytes))
			return
		}
		body, err := io.ReadAll(file)
		if err != nil {
			writeError(w, err)
			return
		}

		upload := objects.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Path:        r.FormValue("path"),
			Description: r.FormValue("description"),
			Tags:        r.FormValue("tags"),
			Body:        body,
		}
		if user, ok := auth.UserFromContext(r.Context()); ok {
			upload.UploadedBy = user.Email
		}

		result, err := s.objects.Upload(r.Context(), upload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
