package actor

import (
	"context"
	"net/http"
	"strconv"

	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

type actorCtxKey struct{}

// FromContext retrieves the authenticated user ID from context.
// Zero means the request is anonymous.
func FromContext(ctx context.Context) uint64 {
	if id, ok := ctx.Value(actorCtxKey{}).(uint64); ok {
		return id
	}
	return 0
}

// WithActor stores the authenticated user ID in context.
func WithActor(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, id)
}

// Middleware reads the actor set by the authenticating proxy.
type Middleware struct {
	header string
	logger *zap.Logger
}

// New creates a new actor middleware reading the given header.
func New(header string, logger *zap.Logger) *Middleware {
	return &Middleware{
		header: header,
		logger: logger.Named("actor"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware handler for actor extraction.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		value := req.Header.Get(m.header)
		if value == "" {
			return next(w, req)
		}

		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			m.logger.Warn("Malformed actor header",
				zap.String("header", m.header),
				zap.String("value", value))
			http.Error(w, "Bad request", http.StatusBadRequest)
			return nil
		}

		return next(w, req.WithContext(WithActor(req.Context(), id)))
	}
}
