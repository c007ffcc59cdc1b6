package service

import (
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// Event types emitted by game operations
const (
	EventMove     = "move"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventWon      = "won"
	EventGameOver = "game_over"
	EventReset    = "reset"
	EventBlocked  = "blocked"
)

// Stop reason codes for bulk and auto play
const (
	StopGameOver  = "game_over"
	StopBlocked   = "blocked"
	StopInvalid   = "invalid_direction"
	StopCancelled = "cancelled"
	StopLimit     = "limit"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success    bool              `json:"success"`
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`
	Step       *StepInfo         `json:"step,omitempty"`
	ScoreDelta int               `json:"score_delta"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // game_over|blocked|invalid_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`

	Steps []StepInfo `json:"steps,omitempty"`

	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record of one executed move
type StepInfo struct {
	Idx        int           `json:"idx"`
	Dir        string        `json:"dir"`
	Success    bool          `json:"success"`
	ScoreDelta int           `json:"score_delta"`
	Merges     int           `json:"merges"`
	MaxTile    int           `json:"max_tile"`
	Spawn      *engine.Spawn `json:"spawn,omitempty"`
	Won        bool          `json:"won,omitempty"`
}

// SuggestResult is the planner's analysis of a session's current board
type SuggestResult struct {
	SessionID  string            `json:"session_id"`
	Suggestion engine.Suggestion `json:"suggestion"`
	GameState  *engine.GameState `json:"game_state"`
}

// AutoPlayResult summarises a run of planner-driven moves
type AutoPlayResult struct {
	MovesRequested int               `json:"moves_requested"`
	MovesExecuted  int               `json:"moves_executed"`
	Directions     []string          `json:"directions"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"`
	StartScore     int               `json:"start_score"`
	EndScore       int               `json:"end_score"`
	ScoreDelta     int               `json:"score_delta"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	Duration       time.Duration     `json:"duration_ns"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Direction string           `json:"direction,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string  `json:"filename"`
	ConfigID        string  `json:"config_id"` // The identifier to use for session creation
	Name            string  `json:"name"`      // Display name
	Description     string  `json:"description"`
	SearchDepth     int     `json:"search_depth"`
	Target          int     `json:"target"`
	FourProbability float64 `json:"four_probability"`
	Seeded          bool    `json:"seeded,omitempty"`
}
