package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
)

var errAlreadyStarted = errors.New("session already started")

// SessionManager owns the live backend session and the pool position it was
// opened for.
type SessionManager struct {
	mu      sync.Mutex
	pool    domain.ModelPool
	config  domain.SessionConfig
	factory ports.BackendFactory
	logger  *slog.Logger

	index   int
	session ports.BackendSession
}

func NewSessionManager(pool domain.ModelPool, cfg domain.SessionConfig, factory ports.BackendFactory, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &SessionManager{pool: pool, config: cfg, factory: factory, logger: logger}
}

// Start opens the primary model with an empty history.
func (m *SessionManager) Start(ctx context.Context) error {
	return m.StartWithHistory(ctx, nil)
}

// StartWithHistory opens the primary model seeded with history, as used when a
// saved transcript is resumed.
func (m *SessionManager) StartWithHistory(ctx context.Context, history domain.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return fmt.Errorf("%w: %w", domain.ErrStartupFailed, errAlreadyStarted)
	}
	if m.pool.Len() == 0 {
		return fmt.Errorf("%w: %w", domain.ErrStartupFailed, domain.ErrEmptyPool)
	}
	if err := m.config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStartupFailed, err)
	}

	model := m.pool.Resolve(0)
	session, err := m.factory.Open(ctx, model, m.config, history.Clone())
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", domain.ErrStartupFailed, model, err)
	}

	m.index = 0
	m.session = session
	m.logger.Info("chat session started", "model", model, "pool", m.pool.String(), "turns", len(history))

	return nil
}

// Migrate moves the conversation to the next model in the pool. The switch is
// atomic: on failure the previous session and index stay in place.
func (m *SessionManager) Migrate(ctx context.Context) (domain.ModelID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMigrationFailed, domain.ErrSessionClosed)
	}

	// Clone turns a history the backend cannot report into an empty one.
	history := m.session.History().Clone()
	from := m.pool.Resolve(m.index)
	next := m.pool.Next(m.index)
	to := m.pool.Resolve(next)

	session, err := m.factory.Open(ctx, to, m.config, history)
	if err != nil {
		m.logger.Warn("migration failed", "from", from, "to", to, "error", err)
		return "", fmt.Errorf("%w: open %s: %w", domain.ErrMigrationFailed, to, err)
	}

	if closeErr := m.session.Close(); closeErr != nil {
		m.logger.Debug("close previous session", "model", from, "error", closeErr)
	}
	m.session = session
	m.index = next
	m.logger.Info("session migrated", "from", from, "to", to, "turns", len(history))

	return to, nil
}

// Send forwards text to the live session.
func (m *SessionManager) Send(ctx context.Context, text string) (domain.Reply, domain.ModelID, error) {
	m.mu.Lock()
	session := m.session
	model := m.pool.Resolve(m.index)
	m.mu.Unlock()

	if session == nil {
		return domain.Reply{}, model, domain.ErrSessionClosed
	}

	reply, err := session.Send(ctx, text)
	if err != nil {
		return domain.Reply{}, model, err
	}
	if reply.Model == "" {
		reply.Model = session.Model()
	}

	return reply, model, nil
}

func (m *SessionManager) Pool() domain.ModelPool {
	return m.pool
}

func (m *SessionManager) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *SessionManager) CurrentModel() domain.ModelID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Resolve(m.index)
}

// History returns a copy of the live session's history, or nil before Start.
func (m *SessionManager) History() domain.History {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	return m.session.History().Clone()
}

func (m *SessionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	if err != nil {
		return fmt.Errorf("close %s session: %w", m.pool.Resolve(m.index), err)
	}
	return nil
}
