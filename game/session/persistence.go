package session

import (
	"time"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

// SessionPersistence stores session snapshots outside the process so a
// restart can pick games back up.
type SessionPersistence interface {
	// Save reads the session's engine, so callers hold the session lock.
	Save(session *service.Session) error
	// Load returns ErrSessionNotFound when nothing is stored under id.
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk snapshot of a session: the board as it
// stands now, never the moves that led to it. ConfigName holds the preset
// file ID so the preset can be reloaded by name.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}
