package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/metrics"
	"github.com/robalyx/votedentry/internal/rest/convert"
	"github.com/robalyx/votedentry/internal/rest/middleware/actor"
	restTypes "github.com/robalyx/votedentry/internal/rest/types"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// EntryHandler handles entry-related REST endpoints.
type EntryHandler struct {
	engines Engines
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewEntryHandler creates a new entry handler. The collector may be nil.
func NewEntryHandler(engines Engines, collector *metrics.Collector, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		engines: engines,
		metrics: collector,
		logger:  logger.Named("entry_handler"),
	}
}

// PostAction runs an add, vote, comment or unsubscribe action for the current actor.
// Anonymous requests get 401 before the kind or body is looked at. Rejected
// input is answered with 422 and the per-field errors.
func (h *EntryHandler) PostAction(w http.ResponseWriter, req bunrouter.Request) error {
	start := time.Now()

	actorID := actor.FromContext(req.Context())
	if actorID == 0 {
		return writeError(w, h.logger, types.ErrUnauthorized)
	}

	engine, err := h.engines.engine(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	var body restTypes.ActionRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		return writeError(w, h.logger, fmt.Errorf("%w: malformed body", types.ErrBadRequest))
	}

	action, err := enum.ActionString(body.Action)
	if err != nil {
		return writeError(w, h.logger, fmt.Errorf("%w: unknown action %q", types.ErrBadRequest, body.Action))
	}

	result, err := engine.Handle(req.Context(), &voting.ActionContext{
		Action:  action,
		Actor:   actorID,
		EntryID: body.EntryID,
		Fields:  body.Fields,
	})
	if err != nil {
		h.metrics.ObserveAction(engine.Kind().Name, action.String(), metrics.OutcomeError, time.Since(start))
		return writeError(w, h.logger, err)
	}

	status, outcome := http.StatusOK, metrics.OutcomeOK
	if !result.Valid() {
		status, outcome = http.StatusUnprocessableEntity, metrics.OutcomeInvalid
	}
	h.metrics.ObserveAction(engine.Kind().Name, action.String(), outcome, time.Since(start))

	return writeJSON(w, status, convert.Result(engine.Kind(), result))
}

// GetEntry returns an entry with its vote totals and whether the actor is subscribed.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, req bunrouter.Request) error {
	engine, err := h.engines.engine(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	id, err := idParam(req, "id")
	if err != nil {
		return writeError(w, h.logger, err)
	}

	entry, err := engine.Entry(req.Context(), id)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	var subscribed bool
	if actorID := actor.FromContext(req.Context()); actorID != 0 {
		subscribed, err = engine.IsSubscribed(req.Context(), id, actorID)
		if err != nil {
			return writeError(w, h.logger, err)
		}
	}

	return writeJSON(w, http.StatusOK, restTypes.GetEntryResponse{
		Entry:      *convert.Entry(engine.Kind(), entry),
		Subscribed: subscribed,
	})
}

// GetComments returns the comments of an entry, oldest first.
func (h *EntryHandler) GetComments(w http.ResponseWriter, req bunrouter.Request) error {
	engine, err := h.engines.engine(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	id, err := idParam(req, "id")
	if err != nil {
		return writeError(w, h.logger, err)
	}

	entry, err := engine.Entry(req.Context(), id)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	comments, err := engine.Comments(req.Context(), id)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	response := restTypes.GetCommentsResponse{
		Comments: make([]restTypes.Comment, 0, len(comments)),
	}
	for _, comment := range comments {
		response.Comments = append(response.Comments, *convert.Comment(engine.Kind(), entry, comment))
	}

	return writeJSON(w, http.StatusOK, response)
}
