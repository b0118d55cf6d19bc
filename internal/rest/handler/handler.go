package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/robalyx/votedentry/internal/database/types"
	restTypes "github.com/robalyx/votedentry/internal/rest/types"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Engines maps kind names to their voting engine.
type Engines map[string]*voting.Engine

// engine returns the engine for the kind named in the route.
func (e Engines) engine(req bunrouter.Request) (*voting.Engine, error) {
	kind := req.Param("kind")
	if engine, ok := e[kind]; ok {
		return engine, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnknownKind, kind)
}

// idParam parses a numeric route parameter.
func idParam(req bunrouter.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(req.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", types.ErrBadRequest, name)
	}
	return id, nil
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(data)

	return err
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrEntryNotFound), errors.Is(err, types.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status matching err. Internal errors are logged
// and their details are not exposed.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) error {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		message = "Internal server error"
	}

	return writeJSON(w, status, restTypes.ErrorResponse{Error: message})
}
