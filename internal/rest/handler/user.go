package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/rest/convert"
	restTypes "github.com/robalyx/votedentry/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// UserHandler handles user-related REST endpoints.
type UserHandler struct {
	engines Engines
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(engines Engines, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		engines: engines,
		logger:  logger.Named("user_handler"),
	}
}

// GetSubscriptions lists the entries of a kind the user is subscribed to.
func (h *UserHandler) GetSubscriptions(w http.ResponseWriter, req bunrouter.Request) error {
	engine, err := h.engines.engine(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	userID, err := idParam(req, "user")
	if err != nil {
		return writeError(w, h.logger, err)
	}

	ids, err := engine.SubscribedEntryIDs(req.Context(), userID)
	if err != nil {
		return writeError(w, h.logger, err)
	}
	if ids == nil {
		ids = []uint64{}
	}

	return writeJSON(w, http.StatusOK, restTypes.GetSubscriptionsResponse{EntryIDs: ids})
}

// GetVotes lists the user's votes on entries of a kind, optionally limited to one grouper.
func (h *UserHandler) GetVotes(w http.ResponseWriter, req bunrouter.Request) error {
	engine, err := h.engines.engine(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	userID, err := idParam(req, "user")
	if err != nil {
		return writeError(w, h.logger, err)
	}

	var grouperID uint64
	if value := req.URL.Query().Get("grouper"); value != "" {
		grouperID, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return writeError(w, h.logger, fmt.Errorf("%w: invalid grouper", types.ErrBadRequest))
		}
	}

	votes, err := engine.UserVotes(req.Context(), userID, grouperID)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, restTypes.GetVotesResponse{Votes: convert.VoteMarks(votes)})
}
