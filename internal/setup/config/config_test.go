package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonTOML = `
[common]
version = 1

[common.debug]
log_level = "debug"

[common.postgresql]
host = "localhost"
port = 5432
user = "postgres"
db_name = "votedentry"

[common.redis]
host = "localhost"
port = 6379
notification_db = 3

[common.notification]
sink = "redis"
async = true
stream = "ideas:notifications"
max_len = 5000

[common.voting]
max_body_length = 2000

[[common.kinds]]
name = "idea"
grouper_required = true
base_url = "/projects/{grouper}/ideas/"
watchers = [10, 11]

[common.kinds.events]
up_vote = "idea_liked"

[common.kinds.messages]
thanks_for_voting = "Thanks!"

[[common.kinds]]
name = "faq"
base_url = "/faq/"
`

const apiTOML = `
[api]
version = 1
port = 9000
`

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, map[string]string{"common.toml": commonTOML, "api.toml": apiTOML})

	cfg, usedPath, err := config.LoadConfigFrom([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)
	assert.Equal(t, dir, usedPath)

	assert.Equal(t, "debug", cfg.Common.Debug.LogLevel)
	assert.Equal(t, 10, cfg.Common.Debug.MaxLogsToKeep)
	assert.Equal(t, "votedentry", cfg.Common.PostgreSQL.DBName)
	assert.Equal(t, 3, cfg.Common.Redis.NotificationDB)
	assert.Equal(t, config.SinkRedis, cfg.Common.Notification.Sink)
	assert.True(t, cfg.Common.Notification.Async)
	assert.Equal(t, 4, cfg.Common.Notification.Workers)
	assert.Equal(t, int64(5000), cfg.Common.Notification.MaxLen)
	assert.Equal(t, 2000, cfg.Common.Voting.MaxBodyLength)

	require.Len(t, cfg.Common.Kinds, 2)
	idea := cfg.Common.Kinds[0]
	assert.Equal(t, "idea", idea.Name)
	assert.True(t, idea.GrouperRequired)
	assert.Equal(t, []uint64{10, 11}, idea.Watchers)
	assert.Equal(t, "idea_liked", idea.Events.UpVote)
	assert.Equal(t, "Thanks!", idea.Messages.ThanksForVoting)
	assert.False(t, cfg.Common.Kinds[1].GrouperRequired)

	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "X-Actor-ID", cfg.API.ActorHeader)
}

func TestLoadConfigFromErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{
			name:  "missing api file",
			files: map[string]string{"common.toml": commonTOML},
			want:  config.ErrConfigFileNotFound,
		},
		{
			name:  "missing version",
			files: map[string]string{"common.toml": "[common]\n[[common.kinds]]\nname = \"idea\"\nbase_url = \"/\"\n", "api.toml": apiTOML},
			want:  config.ErrConfigVersionMissing,
		},
		{
			name:  "old version",
			files: map[string]string{"common.toml": commonTOML, "api.toml": "[api]\nversion = 7\n"},
			want:  config.ErrConfigVersionMismatch,
		},
		{
			name:  "no kinds",
			files: map[string]string{"common.toml": "[common]\nversion = 1\n", "api.toml": apiTOML},
			want:  config.ErrNoKinds,
		},
		{
			name: "duplicate kind",
			files: map[string]string{
				"common.toml": "[common]\nversion = 1\n" +
					"[[common.kinds]]\nname = \"idea\"\nbase_url = \"/a/\"\n" +
					"[[common.kinds]]\nname = \"idea\"\nbase_url = \"/b/\"\n",
				"api.toml": apiTOML,
			},
			want: config.ErrInvalidKind,
		},
		{
			name: "unknown sink",
			files: map[string]string{
				"common.toml": "[common]\nversion = 1\n[common.notification]\nsink = \"carrier_pigeon\"\n" +
					"[[common.kinds]]\nname = \"idea\"\nbase_url = \"/a/\"\n",
				"api.toml": apiTOML,
			},
			want: config.ErrUnknownSink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeConfig(t, tt.files)
			_, _, err := config.LoadConfigFrom([]string{dir})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadShippedConfig(t *testing.T) {
	t.Parallel()

	cfg, dir, err := config.LoadConfigFrom([]string{filepath.Join("..", "..", "..", "config")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "..", "..", "config"), dir)
	require.Len(t, cfg.Common.Kinds, 2)
	assert.Equal(t, "idea", cfg.Common.Kinds[0].Name)
	assert.True(t, cfg.Common.Kinds[0].GrouperRequired)
	assert.Equal(t, config.SinkLog, cfg.Common.Notification.Sink)
	assert.Equal(t, "X-Actor-ID", cfg.API.ActorHeader)
}
