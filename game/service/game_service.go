package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// GameService is everything the HTTP API, the websocket hub and the MCP
// tools can do to a game. Session IDs are case-insensitive.
type GameService interface {
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Move plays one direction. A move that changes nothing is reported
	// through MoveResult.Success rather than an error.
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	// BulkMove plays moves in order and stops at the first one that fails
	// or ends the game.
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Suggest runs the lookahead planner on the current board without
	// changing it.
	Suggest(ctx context.Context, sessionID string) (*SuggestResult, error)
	// AutoPlay lets the planner play up to maxMoves moves.
	AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*AutoPlayResult, error)

	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
	// ReloadConfigs rereads one preset from disk, or every preset when
	// configName is empty. Running sessions keep the rules they started with.
	ReloadConfigs(ctx context.Context, configName string) error
}

// SessionManager owns live sessions and their persistence. Save expects the
// caller to hold the session lock; UpdateLastAccessed takes it itself.
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager serves game presets by file ID
type ConfigManager interface {
	GetDefault() *engine.GameConfig
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	SaveConfig(name string, config *engine.GameConfig) error
	RefreshCache() error
	ReloadConfig(name string) error
}

// Session is one game in progress. Engine and LastAccessedAt are guarded by
// the session lock; ID, Config and CreatedAt never change.
type Session struct {
	ID     string
	Engine *engine.GameEngine
	Config *engine.GameConfig

	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }
