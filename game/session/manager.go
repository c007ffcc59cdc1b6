package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps live sessions keyed by lowercase ID. With persistence it
// snapshots on create and access, and reloads sessions it no longer holds.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager returns a memory-only manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create creates a new session with the given ID and configuration.
// An empty id gets a fresh 4-character hex ID.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.uniqueSessionID()
	} else if !validSessionID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &service.Session{
		ID:             strings.ToLower(id),
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[session.ID] = session

	m.persist(session, "new session")
	return session, nil
}

// Get retrieves a session by ID (case-insensitive), falling back to persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(key) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("reload session %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it first
	if session, exists := m.sessions[key]; exists {
		return session, nil
	}
	m.sessions[key] = loaded
	return loaded, nil
}

// List returns the sessions held in memory, in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Collect(maps.Values(m.sessions))
}

// persist writes a snapshot when persistence is configured. Failures are
// logged: the in-memory session stays authoritative.
func (m *Manager) persist(session *service.Session, reason string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Str("reason", reason).Msg("snapshot failed")
	}
}

// Delete drops a session from memory and removes its snapshot
func (m *Manager) Delete(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("remove snapshot %s: %w", key, err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory forgets a session but leaves its snapshot on disk
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed marks a session as used now. It takes the session
// lock, so callers must not hold it.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()
	session.LastAccessedAt = time.Now()
	m.persist(session, "access update")
	return nil
}

// Exists reports whether a session is loaded in memory (case-insensitive)
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// Save snapshots one session. It is a no-op without persistence. Callers
// hold the session lock.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Snapshots stay on disk and reload on demand.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	// Session locks are never taken while m.mu is held
	for _, session := range m.List() {
		session.Lock()
		idle := session.LastAccessedAt.Before(cutoff)
		session.Unlock()
		if !idle {
			continue
		}

		key := strings.ToLower(session.ID)
		m.mu.Lock()
		if m.sessions[key] == session {
			delete(m.sessions, key)
			removed++
		}
		m.mu.Unlock()
	}
	return removed
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// uniqueSessionID draws IDs until one is free. Callers hold m.mu.
func (m *Manager) uniqueSessionID() string {
	for {
		id := generateSessionID()
		if _, exists := m.sessions[id]; exists {
			continue
		}
		if m.persistence != nil && m.persistence.Exists(id) {
			continue
		}
		return id
	}
}

func generateSessionID() string {
	return hex.EncodeToString(frand.Bytes(2))
}

// validSessionID accepts short IDs made of letters, digits, dashes and underscores
func validSessionID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// LoadPersistedSessions pulls every snapshot not already in memory. Bad
// snapshots are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		if _, exists := m.sessions[key]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}

		m.sessions[key] = session
		loaded++
	}

	if loaded > 0 {
		log.Info().Int("count", loaded).Msg("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions snapshots everything held in memory
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, session := range m.List() {
		session.Lock()
		err := m.persistence.Save(session)
		session.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("snapshot failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d session(s) could not be saved", failed)
	}
	return nil
}
