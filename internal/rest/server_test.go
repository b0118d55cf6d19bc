package rest_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/metrics"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/robalyx/votedentry/internal/rest"
	"github.com/robalyx/votedentry/internal/rest/handler"
	restTypes "github.com/robalyx/votedentry/internal/rest/types"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/robalyx/votedentry/internal/voting/votingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const actorHeader = "X-Actor-ID"

type fixture struct {
	handler http.Handler
	store   *votingtest.Store
	entry   *types.Entry
}

func setup(t *testing.T, opts ...rest.Option) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := votingtest.New()

	engine, err := voting.NewEngine(&voting.Kind{
		Name:            "idea",
		GrouperRequired: true,
		BaseURL:         "/projects/{grouper}/ideas/",
	}, store, notify.NewDispatcher(notify.NewLogSink(logger), logger), logger)
	require.NoError(t, err)

	entry := store.SeedEntry(types.Entry{Kind: "idea", GrouperID: 7, UserID: 1, Body: "Add a dark mode"})

	h := rest.NewServer(handler.Engines{"idea": engine}, logger, &config.APIConfig{
		ActorHeader:    actorHeader,
		RequestTimeout: 1000,
	}, opts...)

	return &fixture{handler: h, store: store, entry: entry}
}

func (f *fixture) do(t *testing.T, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v))

	return v
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := setup(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostVote(t *testing.T) {
	t.Parallel()

	f := setup(t)

	rec := f.do(t, http.MethodPost, "/v1/idea/actions", "2",
		`{"action":"vote","entryId":1,"fields":{"direction":"down"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[restTypes.ActionResponse](t, rec)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, int32(1), resp.Entry.DownVotes)
	assert.Equal(t, int32(-1), resp.Entry.ResultVotes)
	require.NotNil(t, resp.Vote)
	assert.Equal(t, "down", resp.Vote.Direction)
	assert.Equal(t, "/projects/7/ideas/#1", resp.Redirect)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "info", resp.Messages[1].Level)

	// Voting the same way again removes the vote.
	rec = f.do(t, http.MethodPost, "/v1/idea/actions", "2",
		`{"action":"vote","entryId":1,"fields":{"direction":"down"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = decode[restTypes.ActionResponse](t, rec)
	assert.Nil(t, resp.Vote)
	assert.Equal(t, int32(0), resp.Entry.DownVotes)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "info", resp.Messages[1].Level)
}

func TestPostActionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		actor      string
		body       string
		wantStatus int
	}{
		{
			name:       "anonymous",
			path:       "/v1/idea/actions",
			body:       `{"action":"vote","entryId":1,"fields":{"direction":"up"}}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous with unknown kind",
			path:       "/v1/bug/actions",
			body:       `{"action":"vote","entryId":1,"fields":{"direction":"up"}}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous with unknown action",
			path:       "/v1/idea/actions",
			body:       `{"action":"delete","entryId":1}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous with malformed body",
			path:       "/v1/idea/actions",
			body:       `{`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown kind",
			path:       "/v1/bug/actions",
			actor:      "2",
			body:       `{"action":"vote","entryId":1,"fields":{"direction":"up"}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown entry",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{"action":"vote","entryId":99,"fields":{"direction":"up"}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown action",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{"action":"delete","entryId":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "vote without entry",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{"action":"vote","fields":{"direction":"up"}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "edit by other user",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{"action":"add","entryId":1,"fields":{"body":"Mine now"}}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "invalid direction",
			path:       "/v1/idea/actions",
			actor:      "2",
			body:       `{"action":"vote","entryId":1,"fields":{"direction":"sideways"}}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setup(t)
			rec := f.do(t, http.MethodPost, tt.path, tt.actor, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestPostInvalidActionReturnsFieldErrors(t *testing.T) {
	t.Parallel()

	f := setup(t)

	rec := f.do(t, http.MethodPost, "/v1/idea/actions", "3", `{"action":"comment","entryId":1,"fields":{"body":"  "}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[restTypes.ActionResponse](t, rec)
	assert.Contains(t, resp.Errors, "body")
	assert.Empty(t, f.store.Votes(f.entry.ID))
}

func TestGetEntryAndComments(t *testing.T) {
	t.Parallel()

	f := setup(t)

	rec := f.do(t, http.MethodPost, "/v1/idea/actions", "3",
		`{"action":"comment","entryId":1,"fields":{"body":"Yes please"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/idea/entries/1", "3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	entry := decode[restTypes.GetEntryResponse](t, rec)
	assert.Equal(t, "Add a dark mode", entry.Entry.Body)
	assert.Equal(t, "/projects/7/ideas/#1", entry.Entry.URL)
	assert.True(t, entry.Subscribed)

	rec = f.do(t, http.MethodGet, "/v1/idea/entries/1/comments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	comments := decode[restTypes.GetCommentsResponse](t, rec)
	require.Len(t, comments.Comments, 1)
	assert.Equal(t, "Yes please", comments.Comments[0].Body)
	assert.True(t, strings.HasPrefix(comments.Comments[0].URL, "/projects/7/ideas/#comment-"))

	rec = f.do(t, http.MethodGet, "/v1/idea/entries/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/idea/entries/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserSubscriptionsAndVotes(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.store.SeedVote(types.VoteRecord{EntryID: f.entry.ID, UserID: 2, Direction: enum.DirectionUp})

	rec := f.do(t, http.MethodPost, "/v1/idea/actions", "2",
		`{"action":"comment","entryId":1,"fields":{"body":"Agreed"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/idea/users/2/subscriptions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[restTypes.GetSubscriptionsResponse](t, rec)
	assert.Equal(t, []uint64{f.entry.ID}, subs.EntryIDs)

	rec = f.do(t, http.MethodGet, "/v1/idea/users/2/votes?grouper=7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	votes := decode[restTypes.GetVotesResponse](t, rec)
	require.Len(t, votes.Votes, 1)
	assert.Equal(t, restTypes.VoteMarks{
		EntryID:   f.entry.ID,
		Direction: "up",
		Up:        voting.MarkVoted,
		Down:      voting.MarkInactive,
	}, votes.Votes[0])

	rec = f.do(t, http.MethodGet, "/v1/idea/users/2/votes?grouper=x", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	f := setup(t, rest.WithMetrics(metrics.NewCollector(reg), reg))

	rec := f.do(t, http.MethodPost, "/v1/idea/actions", "2",
		`{"action":"vote","entryId":1,"fields":{"direction":"up"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/idea/actions", "2",
		`{"action":"vote","entryId":1,"fields":{"direction":"maybe"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `votedentry_actions_total{action="vote",kind="idea",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `votedentry_actions_total{action="vote",kind="idea",outcome="invalid"} 1`)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	t.Parallel()

	f := setup(t)
	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
