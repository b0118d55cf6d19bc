package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrNoKinds               = errors.New("config declares no entry kinds")
	ErrInvalidKind           = errors.New("invalid entry kind")
	ErrUnknownSink           = errors.New("unknown notification sink")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentAPIVersion    = 1
)

// Notification sinks.
const (
	SinkNone  = "none"
	SinkLog   = "log"
	SinkRedis = "redis"
)

var kindNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	API    APIConfig    `koanf:"api"`
}

// CommonConfig contains configuration shared between the API server and the db tool.
type CommonConfig struct {
	// Version of the common config.
	Version      int          `koanf:"version"`
	Debug        Debug        `koanf:"debug"`
	PostgreSQL   PostgreSQL   `koanf:"postgresql"`
	Redis        Redis        `koanf:"redis"`
	Notification Notification `koanf:"notification"`
	Voting       Voting       `koanf:"voting"`
	Kinds        []Kind       `koanf:"kinds"`
}

// APIConfig contains REST server configuration.
type APIConfig struct {
	// Version of the api config.
	Version int `koanf:"version"`
	// Address to listen on.
	Host string `koanf:"host"`
	// Port to listen on.
	Port int `koanf:"port"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Header carrying the authenticated user ID set by the upstream proxy.
	ActorHeader string `koanf:"actor_header"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Also write logs to stderr.
	Console bool `koanf:"console"`
	// Record database queries and errors as OpenTelemetry spans.
	Tracing bool `koanf:"tracing"`
	// Uptrace project DSN receiving the spans. Spans are discarded without it.
	UptraceDSN string `koanf:"uptrace_dsn"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
	// Logical database holding the notification stream.
	NotificationDB int `koanf:"notification_db"`
}

// Notification configures where notifications are delivered.
type Notification struct {
	// Sink is one of none, log or redis.
	Sink string `koanf:"sink"`
	// Deliver on a worker pool instead of the request goroutine.
	Async bool `koanf:"async"`
	// Maximum concurrent deliveries when async.
	Workers int `koanf:"workers"`
	// Redis stream receiving notifications.
	Stream string `koanf:"stream"`
	// Approximate maximum stream length, 0 for unbounded.
	MaxLen int64 `koanf:"max_len"`
}

// Voting contains limits applied to every kind.
type Voting struct {
	// Maximum entry and comment body length in characters.
	MaxBodyLength int `koanf:"max_body_length"`
}

// Kind declares one type of voted entry.
type Kind struct {
	// Name used in URLs, the kind column and default event types.
	Name string `koanf:"name"`
	// Whether entries belong to a parent grouping.
	GrouperRequired bool `koanf:"grouper_required"`
	// Page listing the entries, may contain {grouper}.
	BaseURL string `koanf:"base_url"`
	// Users told about every new entry.
	Watchers []uint64     `koanf:"watchers"`
	Events   KindEvents   `koanf:"events"`
	Messages KindMessages `koanf:"messages"`
}

// KindEvents overrides the notification types of a kind.
type KindEvents struct {
	UpVote       string `koanf:"up_vote"`
	DownVote     string `koanf:"down_vote"`
	Comment      string `koanf:"comment"`
	CommentOwner string `koanf:"comment_owner"`
	EntryAdded   string `koanf:"entry_added"`
}

// KindMessages overrides the user-facing texts of a kind.
type KindMessages struct {
	EntryAdded      string `koanf:"entry_added"`
	ThanksForVoting string `koanf:"thanks_for_voting"`
	ConsiderComment string `koanf:"consider_comment"`
	Unsubscribed    string `koanf:"unsubscribed"`
	CommentAdded    string `koanf:"comment_added"`
}

// LoadConfig loads the configuration from the first config path that has it.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".votedentry",
		homeDir + "/.votedentry/config",
		"/etc/votedentry/config",
		"config",
		".",
	}

	return LoadConfigFrom(configPaths)
}

// LoadConfigFrom loads common.toml and api.toml from the given search paths.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "api"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("api", config.API.Version, CurrentAPIVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	if err := config.Common.validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// applyDefaults fills in optional settings left out of the config files.
func (c *Config) applyDefaults() {
	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}
	if c.Common.Debug.MaxLogsToKeep <= 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}
	if c.Common.Notification.Sink == "" {
		c.Common.Notification.Sink = SinkLog
	}
	if c.Common.Notification.Workers <= 0 {
		c.Common.Notification.Workers = 4
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = 10000
	}
	if c.API.ActorHeader == "" {
		c.API.ActorHeader = "X-Actor-ID"
	}
}

// validate checks the declared kinds and notification settings.
func (c *CommonConfig) validate() error {
	switch c.Notification.Sink {
	case SinkNone, SinkLog, SinkRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Notification.Sink)
	}

	if len(c.Kinds) == 0 {
		return ErrNoKinds
	}

	seen := make(map[string]struct{}, len(c.Kinds))
	for i, kind := range c.Kinds {
		if !kindNamePattern.MatchString(kind.Name) {
			return fmt.Errorf("%w: kinds[%d] has invalid name %q", ErrInvalidKind, i, kind.Name)
		}
		if _, ok := seen[kind.Name]; ok {
			return fmt.Errorf("%w: %q declared twice", ErrInvalidKind, kind.Name)
		}
		if kind.BaseURL == "" {
			return fmt.Errorf("%w: %q has no base_url", ErrInvalidKind, kind.Name)
		}
		seen[kind.Name] = struct{}{}
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/votedentry/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
