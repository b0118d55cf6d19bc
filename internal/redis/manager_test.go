package redis_test

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/votedentry/internal/redis"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newConfig(t *testing.T, mr *miniredis.Miniredis) *config.Redis {
	t.Helper()

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	return &config.Redis{Host: mr.Host(), Port: port, NotificationDB: 2}
}

func TestManagerClient(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	manager := redis.NewManager(newConfig(t, mr), zaptest.NewLogger(t))
	defer manager.Close()

	client, err := manager.Client(t.Context(), 0)
	require.NoError(t, err)

	again, err := manager.Client(t.Context(), 0)
	require.NoError(t, err)
	assert.Same(t, client, again)

	require.NoError(t, client.Do(t.Context(), client.B().Set().Key("k").Value("v").Build()).Error())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	manager.Close()
	manager.Close()
}

func TestManagerNotificationsUsesConfiguredDB(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	manager := redis.NewManager(newConfig(t, mr), zaptest.NewLogger(t))
	defer manager.Close()

	client, err := manager.Notifications(t.Context())
	require.NoError(t, err)
	require.NoError(t, client.Do(t.Context(), client.B().Set().Key("stream").Value("x").Build()).Error())

	assert.True(t, mr.DB(2).Exists("stream"))
	assert.False(t, mr.DB(0).Exists("stream"))
}

func TestManagerUnreachableServer(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := newConfig(t, mr)
	mr.Close()

	manager := redis.NewManager(cfg, zaptest.NewLogger(t))
	defer manager.Close()

	_, err = manager.Notifications(t.Context())
	require.Error(t, err)
}
