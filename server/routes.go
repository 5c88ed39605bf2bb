package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/internal/metrics"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("GET "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("GET "+RouteAuthCallback, s.OAuthCallbackHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteAuthVerify, s.VerifySessionHandler())
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware()...))

	// Namespace
	s.RegisterRouteHandler("GET "+RouteFolders, ChainMiddleware(s.ListFoldersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFolders, ChainMiddleware(s.CreateFolderHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFolderRename, ChainMiddleware(s.RenameFolderHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteFolderPath, ChainMiddleware(s.DeleteFolderHandler(), s.APIMiddleware()...))

	// Objects
	s.RegisterRouteHandler("GET "+RouteMetadata, ChainMiddleware(s.GetMetadataHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteMetadata, ChainMiddleware(s.UpdateMetadataHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSearch, ChainMiddleware(s.SearchHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteUpload, ChainMiddleware(s.UploadHandler(), s.APIMiddleware()...))

	// Public
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.gatherer != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.gatherer))
	}

	s.RegisterRouteFunc("/", s.NotFoundHandler())
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperrors.Wrapf(apperrors.ErrEndpointNotFound, "[Server] no route for %s %s", r.Method, r.URL.Path))
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
