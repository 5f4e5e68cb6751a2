package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/ports"
	"github.com/aretw0/tortuga/pkg/turtle"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock survives a
// crashed holder.
const DefaultLockTTL = 30 * time.Second

// Spawner hands out fresh turtles on a running engine.
// *tortuga.Engine satisfies it.
type Spawner interface {
	NewTurtle() *turtle.Turtle
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager maps session IDs to live turtles and checkpoints their pose after
// every batch of commands. Session turtles share one window, so window-level
// operations abort with domain.ErrScreenForbidden (see turtle.Turtle.Share). A session whose turtle is not attached to this
// process (after a restart, or on another replica) is resumed from its
// last snapshot on first use.
//
// Locks are reference counted so that finished sessions do not leak entries.
type Manager struct {
	spawner Spawner
	store   ports.SnapshotStore

	mu      sync.Mutex // guards locks and turtles
	locks   map[string]*lockEntry
	turtles map[string]*turtle.Turtle
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string
	clock   func() time.Time
}

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

// NewManager creates a session manager that spawns turtles on spawner and
// checkpoints them into store.
func NewManager(spawner Spawner, store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		spawner: spawner,
		store:   store,
		locks:   make(map[string]*lockEntry),
		turtles: make(map[string]*turtle.Turtle),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
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

// Start opens a new session on a fresh turtle and stores its first
// checkpoint.
func (m *Manager) Start(ctx context.Context) (string, domain.Snapshot, error) {
	id := m.newID()
	var snap domain.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		t := m.spawner.NewTurtle()
		t.Share()
		m.attach(id, t)

		var err error
		snap, err = m.checkpoint(ctx, id, t)
		return err
	})
	if err != nil {
		return "", domain.Snapshot{}, err
	}
	m.logger.Info("session started", "session_id", id)
	return id, snap, nil
}

// Do plays fn on the session's turtle while holding the session lock, then
// checkpoints the resulting pose. An aborted fn still checkpoints whatever it
// drew before failing, unless the engine itself is gone.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(*turtle.Turtle)) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		t, err := m.lookup(ctx, sessionID)
		if err != nil {
			return err
		}

		played := turtle.Guard(func() { fn(t) })
		if errors.Is(played, domain.ErrEngineGone) {
			m.detach(sessionID)
			return played
		}

		snap, err = m.checkpoint(ctx, sessionID, t)
		if err != nil {
			return err
		}
		return played
	})
	return snap, err
}

// Load returns the last checkpoint of a session.
func (m *Manager) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Delete detaches the session's turtle and removes its checkpoint. The
// drawing stays on the canvas.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if t := m.detach(sessionID); t != nil {
			t.Close()
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		m.logger.Info("session deleted", "session_id", sessionID)
		return nil
	})
}

// TurtleID returns the ID of the turtle attached to a session in this
// process, without checkpointing or resuming it. A stored session that has
// no turtle here reports ok == false.
func (m *Manager) TurtleID(ctx context.Context, sessionID string) (id uint64, ok bool, err error) {
	m.mu.Lock()
	t, attached := m.turtles[sessionID]
	m.mu.Unlock()
	if attached {
		return t.ID(), true, nil
	}
	if _, err := m.store.Load(ctx, sessionID); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
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

func (m *Manager) attach(id string, t *turtle.Turtle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turtles[id] = t
}

func (m *Manager) detach(id string) *turtle.Turtle {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.turtles[id]
	delete(m.turtles, id)
	return t
}

// lookup returns the attached turtle, resuming it from the store when this
// process has not seen the session yet. Callers hold the session lock.
//
// A resumed turtle gets the saved pose but an empty undo history: strokes are
// not persisted, so snap.UndoCount only describes the replica that saved it.
func (m *Manager) lookup(ctx context.Context, id string) (*turtle.Turtle, error) {
	m.mu.Lock()
	t, ok := m.turtles[id]
	m.mu.Unlock()
	if ok {
		return t, nil
	}

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	t = m.spawner.NewTurtle()
	t.Share()
	if err := turtle.Guard(func() { t.Restore(snap.State) }); err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	m.attach(id, t)
	m.logger.Info("session resumed", "session_id", id, "saved_at", snap.SavedAt)
	return t, nil
}

func (m *Manager) checkpoint(ctx context.Context, id string, t *turtle.Turtle) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := turtle.Guard(func() {
		snap = domain.Snapshot{
			State:     t.State(),
			UndoCount: t.UndoBufferEntries(),
			SavedAt:   m.clock().UTC(),
		}
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := m.store.Save(ctx, id, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to save checkpoint: %w", err)
	}
	m.logger.Debug("session checkpoint", "session_id", id, "undo_count", snap.UndoCount)
	return snap, nil
}
