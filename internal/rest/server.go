package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robalyx/votedentry/internal/metrics"
	"github.com/robalyx/votedentry/internal/rest/handler"
	"github.com/robalyx/votedentry/internal/rest/middleware/actor"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Server implements the REST API service.
type Server struct {
	entryHandler *handler.EntryHandler
	userHandler  *handler.UserHandler
}

// Option configures optional server features.
type Option func(*options)

type options struct {
	collector *metrics.Collector
	gatherer  prometheus.Gatherer
}

// WithMetrics records handled actions in collector and serves gatherer on /metrics.
func WithMetrics(collector *metrics.Collector, gatherer prometheus.Gatherer) Option {
	return func(o *options) {
		o.collector = collector
		o.gatherer = gatherer
	}
}

// NewServer creates a new REST API server for the given voting engines.
func NewServer(engines handler.Engines, logger *zap.Logger, config *config.APIConfig, opts ...Option) http.Handler {
	logger = logger.Named("rest")

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create server instance with handlers
	server := &Server{
		entryHandler: handler.NewEntryHandler(engines, o.collector, logger),
		userHandler:  handler.NewUserHandler(engines, logger),
	}

	// Create middleware instances
	actorMiddleware := actor.New(config.ActorHeader, logger)
	timeout := time.Duration(config.RequestTimeout) * time.Millisecond

	// Create base router
	router := bunrouter.New()

	router.GET("/healthz", func(w http.ResponseWriter, _ bunrouter.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	})

	if o.gatherer != nil {
		router.GET("/metrics", bunrouter.HTTPHandler(metrics.Handler(o.gatherer)))
	}

	// Create API routes group
	router.Use(
		timeoutMiddleware(timeout),
		actorMiddleware.AsRESTMiddleware,
	).WithGroup("/v1/:kind", func(g *bunrouter.Group) {
		g.POST("/actions", server.entryHandler.PostAction)
		g.GET("/entries/:id", server.entryHandler.GetEntry)
		g.GET("/entries/:id/comments", server.entryHandler.GetComments)
		g.GET("/users/:user/subscriptions", server.userHandler.GetSubscriptions)
		g.GET("/users/:user/votes", server.userHandler.GetVotes)
	})

	// Add gzip compression
	return gzhttp.GzipHandler(router)
}

// timeoutMiddleware bounds how long a request may spend in the engine.
func timeoutMiddleware(timeout time.Duration) bunrouter.MiddlewareFunc {
	return func(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
		return func(w http.ResponseWriter, req bunrouter.Request) error {
			if timeout <= 0 {
				return next(w, req)
			}

			ctx, cancel := context.WithTimeout(req.Context(), timeout)
			defer cancel()

			return next(w, req.WithContext(ctx))
		}
	}
}
