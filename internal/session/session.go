// Package session keeps the per-visitor state of the storefront: one cart
// store, one user store and a service set bound to that user's credential.
package session

import (
	"context"
	"sync"
	"time"

	"optic-storefront/internal/apiclient"
	applog "optic-storefront/internal/logger"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/service"
	"optic-storefront/internal/store"

	"go.uber.org/zap"
)

// Session is the state owned by one browser session
type Session struct {
	ID       string
	Cart     *store.CartStore
	User     *store.UserStore
	Services *service.Services

	hydrateOnce sync.Once
	lastSeen    time.Time
}

// Manager creates, hydrates and expires sessions
type Manager struct {
	client          *apiclient.Client
	repo            repository.SnapshotRepository
	logger          *zap.Logger
	bulkConcurrency int
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Every session's client shares the connection
// pool of client. repo may be nil to disable persistence.
func NewManager(client *apiclient.Client, repo repository.SnapshotRepository, bulkConcurrency int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:          client,
		repo:            repo,
		logger:          logger,
		bulkConcurrency: bulkConcurrency,
		now:             time.Now,
		sessions:        make(map[string]*Session),
	}
}

// Get returns the session for id, creating it and restoring its persisted
// stores on first use.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = m.build(id)
		m.sessions[id] = s
	}
	s.lastSeen = m.now()
	m.mu.Unlock()

	// Hydration runs once per session, so it must not inherit the
	// cancellation of whichever request happened to arrive first.
	s.hydrateOnce.Do(func() {
		m.hydrate(context.WithoutCancel(ctx), s)
	})
	return s
}

func (m *Manager) build(id string) *Session {
	logger := applog.WithSession(m.logger, id)

	users := store.NewUserStore(nil, m.repo, id, logger)
	client := m.client.WithTokenSource(apiclient.TokenFunc(users.Token))
	services := service.New(client, m.bulkConcurrency)
	users.SetAuthService(services.Auth)

	return &Session{
		ID:       id,
		Cart:     store.NewCartStore(services.Cart, m.repo, id, logger),
		User:     users,
		Services: services,
	}
}

func (m *Manager) hydrate(ctx context.Context, s *Session) {
	if _, err := s.User.Hydrate(ctx); err != nil {
		m.logger.Warn("Failed to restore user snapshot",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
	}
	if _, err := s.Cart.Hydrate(ctx); err != nil {
		m.logger.Warn("Failed to restore cart snapshot",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
	}
}

// Len returns the number of sessions held in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than idle. Their snapshots stay in
// the repository, so a returning visitor is restored on the next Get.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("Swept idle sessions", zap.Int("removed", removed), zap.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done. Repositories
// that expire snapshots themselves are purged on the same schedule.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	purger, _ := m.repo.(repository.Purger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(idle)
			if purger == nil {
				continue
			}
			if n, err := purger.Purge(ctx); err != nil {
				m.logger.Warn("Failed to purge expired snapshots", zap.Error(err))
			} else if n > 0 {
				m.logger.Debug("Purged expired snapshots", zap.Int64("removed", n))
			}
		}
	}
}
