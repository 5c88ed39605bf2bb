package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bucket-browser/auth"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/jrsteele09/go-bucket-browser/internal/metrics"
	"github.com/jrsteele09/go-bucket-browser/namespace"
	"github.com/jrsteele09/go-bucket-browser/objects"
	"github.com/jrsteele09/go-bucket-browser/objectstore"
	objmemstore "github.com/jrsteele09/go-bucket-browser/objectstore/memstore"
	"github.com/jrsteele09/go-bucket-browser/objectstore/s3store"
	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/jrsteele09/go-bucket-browser/sessions/memstore"
	"github.com/jrsteele09/go-bucket-browser/sessions/sqlitestore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

const (
	stateBucket   = "oauth_state"
	sessionBucket = "sessions"
)

// Bootstrap wires the configured stores, the identity provider and the
// services into a Server. The returned func releases the stores.
func Bootstrap(ctx context.Context, cfg config.Config) (*Server, func() error, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	states, sessionStore, closeSessions, err := OpenSessionStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	srv, err := func() (*Server, error) {
		objectStore, err := OpenObjectStore(cfg)
		if err != nil {
			return nil, err
		}

		idp, err := auth.NewOIDCProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("[server Bootstrap] identity provider: %w", err)
		}

		gateway, err := auth.NewGateway(cfg, idp, states, sessionStore, auth.WithLoginObserver(collector))
		if err != nil {
			return nil, fmt.Errorf("[server Bootstrap] gateway: %w", err)
		}

		manager := namespace.NewManager(objectStore,
			namespace.WithWorkers(cfg.GetBatchWorkers()),
			namespace.WithOpsPerSecond(cfg.GetBatchOpsPerSecond()),
			namespace.WithObserver(collector),
		)
		objectService := objects.NewService(objectStore,
			objects.WithMaxUploadBytes(cfg.GetMaxUploadBytes()),
			objects.WithPublicDomain(cfg.GetPublicBucketDomain()),
		)

		return New(cfg, Dependencies{
			Gateway:   gateway,
			Namespace: manager,
			Objects:   objectService,
			Metrics:   collector,
			Gatherer:  reg,
		})
	}()
	if err != nil {
		_ = closeSessions()
		return nil, nil, err
	}
	return srv, closeSessions, nil
}

// OpenSessionStores returns the state store and the session store. They are
// always distinct namespaces.
func OpenSessionStores(ctx context.Context, cfg config.StorageConfig) (states, sessionStore sessions.Store, closeFn func() error, err error) {
	switch cfg.GetSessionStore() {
	case config.SessionStoreSQLite:
		db, err := sqlitestore.Open(ctx, cfg.GetSessionDBPath())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("[server OpenSessionStores] %w", err)
		}
		log.Info().Str("path", cfg.GetSessionDBPath()).Msg("using sqlite session store")
		return db.Bucket(stateBucket), db.Bucket(sessionBucket), db.Close, nil
	case config.SessionStoreMemory, "":
		log.Warn().Msg("using in-memory session store, sessions are lost on restart")
		return memstore.New(), memstore.New(), func() error { return nil }, nil
	default:
		return nil, nil, nil, fmt.Errorf("[server OpenSessionStores] unknown session store %q", cfg.GetSessionStore())
	}
}

func OpenObjectStore(cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.GetObjectStore() {
	case config.ObjectStoreS3:
		store, err := s3store.NewFromSettings(cfg.GetS3())
		if err != nil {
			return nil, fmt.Errorf("[server OpenObjectStore] %w", err)
		}
		log.Info().Str("bucket", cfg.GetS3().Bucket).Msg("using s3 object store")
		return store, nil
	case config.ObjectStoreMemory, "":
		log.Warn().Msg("using in-memory object store")
		return objmemstore.New(), nil
	default:
		return nil, fmt.Errorf("[server OpenObjectStore] unknown object store %q", cfg.GetObjectStore())
	}
}
