package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates walker sessions: it loads state, runs the engine
// and persists the result while holding the session lock.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store      ports.StateStore
	engine     ports.StatelessEngine
	classifier ports.Classifier

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	obsMu     sync.RWMutex
	observers []ChangeFunc
}

// ChangeFunc receives the stored state before and after a mutation.
// before is nil when the session did not exist. It runs while the session
// lock is held, so it must not call back into the Manager for that session.
type ChangeFunc func(before, after *domain.State)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a session manager over an engine, a classifier and a store.
func NewManager(engine ports.StatelessEngine, classifier ports.Classifier, store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		engine:     engine,
		classifier: classifier,
		locks:      make(map[string]*lockEntry),
		lockTTL:    DefaultLockTTL,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// OnChange registers fn for every persisted Start, Answer and Cancel.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Manager) observed() bool {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	return len(m.observers) > 0
}

func (m *Manager) notify(before, after *domain.State) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, fn := range m.observers {
		fn(before, after)
	}
}

// Start begins (or restarts) the guided flow for a session.
func (m *Manager) Start(ctx context.Context, sessionID string) (domain.Step, error) {
	var step domain.Step
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var before *domain.State
		if m.observed() {
			if prev, err := m.store.Load(ctx, sessionID); err == nil {
				before = prev
			}
		}
		state, s, err := m.engine.Start(ctx, sessionID)
		if err != nil {
			return err
		}
		step = s
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return err
		}
		m.notify(before, state)
		return nil
	})
	return step, err
}

// Answer applies a choice to an active session.
// Unknown sessions fail with domain.ErrSessionNotFound; rejected choices leave
// the stored state untouched.
func (m *Manager) Answer(ctx context.Context, sessionID, choice string) (domain.Step, error) {
	var step domain.Step
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		before := state.Clone()
		next, s, err := m.engine.Answer(ctx, state, choice)
		if err != nil {
			return err
		}
		step = s
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return err
		}
		m.notify(before, next)
		return nil
	})
	return step, err
}

// Cancel resets a session. Cancelling an unknown session is a no-op.
func (m *Manager) Cancel(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.cancelLocked(ctx, sessionID)
	})
}

func (m *Manager) cancelLocked(ctx context.Context, sessionID string) error {
	state, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	before := state.Clone()
	next := m.engine.Cancel(ctx, state)
	if err := m.store.Save(ctx, sessionID, next); err != nil {
		return err
	}
	m.notify(before, next)
	return nil
}

// Current returns the stored state and the step it renders to.
// The step is zero when the session is idle.
func (m *Manager) Current(ctx context.Context, sessionID string) (*domain.State, domain.Step, error) {
	var (
		state *domain.State
		step  domain.Step
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		step, err = m.engine.Render(ctx, state)
		if errors.Is(err, domain.ErrNoActiveSession) {
			return nil
		}
		return err
	})
	return state, step, err
}

// Classify runs the free-text classifier. Typing free text abandons the
// guided flow, so an active session is cancelled first.
// An empty sessionID classifies without touching any session.
func (m *Manager) Classify(ctx context.Context, sessionID, text string) (domain.Recommendation, error) {
	if sessionID == "" {
		return m.classifier.Classify(ctx, text), nil
	}
	var rec domain.Recommendation
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if err := m.cancelLocked(ctx, sessionID); err != nil {
			return err
		}
		rec = m.classifier.Classify(ctx, text)
		return nil
	})
	return rec, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Engine returns the walker engine.
func (m *Manager) Engine() ports.StatelessEngine {
	return m.engine
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
