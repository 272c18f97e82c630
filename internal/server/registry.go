package server

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/grindworks/grindstone/internal/config"
	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/game"
	"github.com/grindworks/grindstone/internal/items"
	"github.com/grindworks/grindstone/internal/logger"
	"github.com/grindworks/grindstone/internal/tiers"
)

// SessionRegistry owns the live game sessions, one per account. Sessions are
// hydrated from the database on first access and driven by a shared tick loop.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int64]*game.Session

	db       *database.Database
	tables   *tiers.Tables
	catalog  *items.Catalog
	areas    []enemies.Area
	settings config.GameSettings

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSessionRegistry builds a registry over shared game content. settings is
// copied per session so player preferences stay independent.
func NewSessionRegistry(db *database.Database, tables *tiers.Tables, catalog *items.Catalog, areas []enemies.Area, settings config.GameSettings) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[int64]*game.Session),
		db:       db,
		tables:   tables,
		catalog:  catalog,
		areas:    areas,
		settings: settings,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Get returns the live session for an account, loading saved state from the
// database the first time.
func (r *SessionRegistry) Get(accountID int64) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[accountID]; ok {
		return session, nil
	}

	settings := r.settings
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + accountID))
	session, err := game.NewSession(accountID, r.tables, r.catalog, r.areas, &settings, rng)
	if err != nil {
		return nil, err
	}

	raw, _, err := r.db.LoadGameState(accountID)
	switch {
	case err == nil:
		var snap game.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			logger.Warning("Corrupt game state, starting fresh", "account_id", accountID, "error", err)
			session.RestoreSnapshot(nil)
		} else {
			session.RestoreSnapshot(&snap)
		}
	case errors.Is(err, database.ErrStateNotFound):
		// fresh account, defaults apply
	default:
		return nil, err
	}

	r.sessions[accountID] = session
	return session, nil
}

// Peek returns the live session for an account without loading, or nil.
func (r *SessionRegistry) Peek(accountID int64) *game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[accountID]
}

// Run drives all live sessions: one tick per second, plus a periodic autosave
// of dirty sessions. Blocks until Stop is called.
func (r *SessionRegistry) Run() {
	defer close(r.done)

	autosaveInterval := time.Duration(r.settings.AutosaveIntervalSeconds) * time.Second
	if autosaveInterval <= 0 {
		autosaveInterval = time.Minute
	}

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	autosave := time.NewTicker(autosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case now := <-tick.C:
			for _, session := range r.snapshotSessions() {
				session.Tick(now)
			}
		case <-autosave.C:
			r.SaveDirty()
		case <-r.stop:
			return
		}
	}
}

// Stop halts the tick loop and waits for it to exit.
func (r *SessionRegistry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *SessionRegistry) snapshotSessions() []*game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*game.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, session)
	}
	return out
}

// SaveDirty persists every session with unsaved changes.
func (r *SessionRegistry) SaveDirty() {
	for _, session := range r.snapshotSessions() {
		if !session.Dirty() {
			continue
		}
		if err := r.save(session); err != nil {
			logger.Error("Autosave failed", "account_id", session.PlayerID, "error", err)
		}
	}
}

// SaveAll persists every live session regardless of dirty state. Used at
// shutdown.
func (r *SessionRegistry) SaveAll() {
	for _, session := range r.snapshotSessions() {
		if err := r.save(session); err != nil {
			logger.Error("Shutdown save failed", "account_id", session.PlayerID, "error", err)
		}
	}
}

// Save persists one account's session if it is live.
func (r *SessionRegistry) Save(accountID int64) error {
	session := r.Peek(accountID)
	if session == nil {
		return nil
	}
	return r.save(session)
}

func (r *SessionRegistry) save(session *game.Session) error {
	raw, err := json.Marshal(session.Snapshot())
	if err != nil {
		return err
	}
	if err := r.db.SaveGameState(session.PlayerID, raw, game.SnapshotVersion); err != nil {
		return err
	}
	session.ClearDirty()
	return nil
}
