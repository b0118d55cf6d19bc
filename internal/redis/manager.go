package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/rueidis"
	"github.com/robalyx/votedentry/internal/setup/config"
	"go.uber.org/zap"
)

// Manager hands out one rueidis client per logical Redis database.
// Clients are created lazily and verified with a PING before they are shared.
type Manager struct {
	cfg     *config.Redis
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[int]rueidis.Client
}

// NewManager creates a manager for the configured Redis server.
func NewManager(cfg *config.Redis, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  logger.Named("redis"),
		clients: make(map[int]rueidis.Client),
	}
}

// Notifications returns the client of the database holding notification streams.
func (m *Manager) Notifications(ctx context.Context) (rueidis.Client, error) {
	return m.Client(ctx, m.cfg.NotificationDB)
}

// Client returns the client for db, connecting and pinging on first use.
// A client that fails its PING is closed and not cached.
func (m *Manager) Client(ctx context.Context, db int) (rueidis.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[db]; ok {
		return client, nil
	}

	address := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{address},
		Username:     m.cfg.Username,
		Password:     m.cfg.Password,
		SelectDB:     db,
		ClientName:   "votedentry",
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis %s db %d: %w", address, db, err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis %s db %d: %w", address, db, err)
	}

	m.clients[db] = client
	m.logger.Debug("Connected to redis", zap.String("address", address), zap.Int("db", db))

	return client, nil
}

// Close closes every client handed out so far. Later calls to Client reconnect.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for db, client := range m.clients {
		client.Close()
		delete(m.clients, db)
	}
	m.logger.Debug("Closed redis clients")
}
