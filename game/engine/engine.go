package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsWon() bool
	GetScore() int
	GetGrid() Grid

	// Movement operations
	Move(direction string) bool
	MoveDirection(dir Direction) MoveOutcome
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool

	// Planner
	Suggest() Suggestion
	AutoStep() (Direction, bool)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    RandSource
}

// NewEngine creates a new game engine with the provided configuration.
// A zero config seed draws one from the clock.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewEngineWithRand(config, NewRand(seed))
}

// NewEngineWithRand creates an engine whose spawns come from rng
func NewEngineWithRand(config *GameConfig, rng RandSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		rng:    rng,
		state:  InitGameStateFromConfig(config, rng),
	}, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state, as when a saved session is restored.
// Derived fields are recomputed from the grid.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.Grid.Validate(); err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}
	if state.Score < 0 || state.Moves < 0 {
		return fmt.Errorf("invalid state: score %d, moves %d", state.Score, state.Moves)
	}
	e.state = state
	e.refresh()
	return nil
}

// Reset starts a fresh game with the current configuration
func (e *GameEngine) Reset() *GameState {
	e.state = InitGameStateFromConfig(e.config, e.rng)
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsWon returns whether the target tile has been reached
func (e *GameEngine) IsWon() bool {
	return e.state.Won
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetGrid returns a copy of the current grid
func (e *GameEngine) GetGrid() Grid {
	return e.state.Grid
}

// Move slides the tiles in the named direction. It returns false for an
// unknown direction, a move that changes nothing, or a finished game.
func (e *GameEngine) Move(direction string) bool {
	dir, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.MoveDirection(dir).Changed
}

// MoveDirection applies dir for real: score the merges, spawn a tile and
// update the win and game over flags.
func (e *GameEngine) MoveDirection(dir Direction) MoveOutcome {
	if e.state.GameOver {
		return MoveOutcome{Grid: e.state.Grid}
	}

	out := Move(e.state.Grid, dir)
	if !out.Changed {
		e.state.Message = e.config.Messages.CantMove
		return out
	}

	grid, spawn, ok := SpawnWithChance(out.Grid, e.rng, e.config.FourProbability)
	e.state.LastSpawn = nil
	if ok {
		e.state.LastSpawn = &spawn
	}
	e.state.Grid = grid
	e.state.Score += out.ScoreDelta
	e.state.Moves++
	e.state.Message = ""

	wasWon := e.state.Won
	e.refresh()
	if e.state.Won && !wasWon {
		e.state.Message = fmt.Sprintf(e.config.Messages.Victory, e.state.MaxTile)
	}
	if e.state.GameOver {
		e.state.Message = fmt.Sprintf(e.config.Messages.GameOver, e.state.Score)
	}

	return out
}

// refresh recomputes the fields derived from the grid
func (e *GameEngine) refresh() {
	e.state.MaxTile = e.state.Grid.MaxTile()
	if e.state.MaxTile >= e.config.Target {
		e.state.Won = true
	}
	e.state.GameOver = IsTerminal(e.state.Grid)
	e.state.PossibleMoves = DirectionNames(LegalMoves(e.state.Grid))
}

// CanMove checks if sliding in the named direction would change the grid
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}
	dir, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	_, changed := ApplyMove(e.state.Grid, dir)
	return changed
}

// GetPossibleMoves returns all directions that would change the grid
func (e *GameEngine) GetPossibleMoves() []string {
	if e.state.GameOver {
		return nil
	}
	return DirectionNames(LegalMoves(e.state.Grid))
}

// Suggest runs the planner on the current grid at the configured depth
func (e *GameEngine) Suggest() Suggestion {
	return Analyze(e.state.Grid, e.config.SearchDepth)
}

// AutoStep plays the planner's choice. It returns false once no move is legal.
func (e *GameEngine) AutoStep() (Direction, bool) {
	if e.state.GameOver {
		return Left, false
	}
	dir := ChooseMove(e.state.Grid, e.config.SearchDepth)
	return dir, e.MoveDirection(dir).Changed
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config, e.rng)
	return nil
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		success := e.Move(direction)
		results = append(results, success)
	}

	return results
}
