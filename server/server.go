package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-bucket-browser/auth"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/jrsteele09/go-bucket-browser/internal/metrics"
	"github.com/jrsteele09/go-bucket-browser/namespace"
	"github.com/jrsteele09/go-bucket-browser/objects"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Dependencies are the components the HTTP layer delegates to.
type Dependencies struct {
	Gateway   *auth.Gateway
	Namespace *namespace.Manager
	Objects   *objects.Service
	Metrics   *metrics.Collector
	Gatherer  prometheus.Gatherer
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	handler   http.Handler
	routes    []string
	config    config.Config
	gateway   *auth.Gateway
	namespace *namespace.Manager
	objects   *objects.Service
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	if deps.Gateway == nil || deps.Namespace == nil || deps.Objects == nil {
		return nil, fmt.Errorf("[Server New] gateway, namespace manager and object service are required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		gateway:   deps.Gateway,
		namespace: deps.Namespace,
		objects:   deps.Objects,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.StdMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
