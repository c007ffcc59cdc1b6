package engine

import (
	"fmt"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate search settings
	if config.SearchDepth < MinSearchDepth || config.SearchDepth > MaxSearchDepth {
		return fmt.Errorf("config validation: search_depth must be between %d and %d, got %d",
			MinSearchDepth, MaxSearchDepth, config.SearchDepth)
	}

	// Validate spawn settings
	if config.FourProbability < 0 || config.FourProbability > 1 {
		return fmt.Errorf("config validation: four_probability must be between 0 and 1, got %g", config.FourProbability)
	}
	if config.StartTiles < MinStartTiles || config.StartTiles > MaxStartTiles {
		return fmt.Errorf("config validation: start_tiles must be between %d and %d, got %d",
			MinStartTiles, MaxStartTiles, config.StartTiles)
	}

	// Validate target
	if config.Target < 8 || config.Target&(config.Target-1) != 0 {
		return fmt.Errorf("config validation: target must be a power of two of at least 8, got %d", config.Target)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the tile reached")
	}
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for the final score")
	}

	return nil
}

// DefaultGameConfig returns the classic rules used when no preset is loaded
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:            "classic",
		Description:     "Standard 2048: spawn a 2 (sometimes a 4) after every move, reach 2048 to win",
		SearchDepth:     DefaultSearchDepth,
		FourProbability: DefaultFourChance,
		StartTiles:      DefaultStartTiles,
		Target:          DefaultTarget,
	}
	config.Messages.Welcome = "Welcome to 2048! Slide the tiles and merge equal numbers."
	config.Messages.Victory = "You reached %d! Keep going for a higher score."
	config.Messages.GameOver = "No moves left. Final score: %d"
	config.Messages.CantMove = "Nothing moves that way"
	return config
}

// InitGameStateFromConfig creates a new game state using the provided
// configuration, drawing the starting tiles from rng.
func InitGameStateFromConfig(config *GameConfig, rng RandSource) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	var grid Grid
	var last *Spawn
	for i := 0; i < config.StartTiles; i++ {
		next, spawn, ok := SpawnWithChance(grid, rng, config.FourProbability)
		if !ok {
			break
		}
		grid = next
		last = &spawn
	}

	state := &GameState{
		Grid:       grid,
		MaxTile:    grid.MaxTile(),
		Message:    config.Messages.Welcome,
		ConfigName: config.Name,
		LastSpawn:  last,
	}
	state.GameOver = IsTerminal(grid)
	state.PossibleMoves = DirectionNames(LegalMoves(grid))
	return state
}
